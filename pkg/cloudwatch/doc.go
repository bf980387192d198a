// Package cloudwatch defines the data model shared by the exporter and the two
// upstream AWS capability interfaces it consumes, together with their
// aws-sdk-go-v2 implementations.
//
// # Capability interfaces
//
//   - MetricsAPI: ListMetrics, GetStatistics, GetBulkStatistics against the
//     CloudWatch API.
//   - TaggingAPI: GetResources against the Resource Groups Tagging API.
//
// The collector depends only on these interfaces; tests substitute in-memory
// fakes. NewClients wires the real SDK clients, optionally assuming an IAM
// role via STS.
//
// # Model
//
// A DimensionSet is an ordered list of name/value pairs identifying one
// concrete time series within a namespace/metric. Its Key method renders a
// deterministic, name-sorted "name=value,..." form used both as a map key and
// inside the bulk-fetch correlation labels.
package cloudwatch
