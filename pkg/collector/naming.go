package collector

import (
	"regexp"
	"strings"
)

var (
	camelBoundary     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	invalidMetricChar = regexp.MustCompile(`[^a-zA-Z0-9:_]`)
	invalidLabelChar  = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	underscoreRun     = regexp.MustCompile(`__+`)
)

// toSnakeCase converts CamelCase CloudWatch identifiers to snake_case,
// e.g. "RequestCount" -> "request_count", "HTTPCode5XX" -> "httpcode5_xx".
func toSnakeCase(s string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(s, "${1}_${2}"))
}

// safeName replaces characters outside the metric naming charset with
// underscores and collapses underscore runs. Idempotent.
func safeName(s string) string {
	return underscoreRun.ReplaceAllString(invalidMetricChar.ReplaceAllString(s, "_"), "_")
}

// safeLabelName is safeName for label names, which additionally forbid ":".
func safeLabelName(s string) string {
	return underscoreRun.ReplaceAllString(invalidLabelChar.ReplaceAllString(s, "_"), "_")
}

// extractResourceIDFromARN returns the trailing resource id of an ARN: the
// segment after the last ":", then after the last "/" when one is present.
// "arn:aws:dynamodb:us-east-1:123:table/Foo/index/Bar" yields "Bar".
func extractResourceIDFromARN(arn string) string {
	id := arn
	if i := strings.LastIndex(id, ":"); i >= 0 {
		id = id[i+1:]
	}
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}
