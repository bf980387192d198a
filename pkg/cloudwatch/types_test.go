package cloudwatch

import (
	"testing"
)

func TestDimensionSetKey_SortedByName(t *testing.T) {
	a := DimensionSet{
		{Name: "LoadBalancer", Value: "app/web/123"},
		{Name: "AvailabilityZone", Value: "eu-west-1a"},
	}
	b := DimensionSet{
		{Name: "AvailabilityZone", Value: "eu-west-1a"},
		{Name: "LoadBalancer", Value: "app/web/123"},
	}

	want := "AvailabilityZone=eu-west-1a,LoadBalancer=app/web/123"
	if got := a.Key(); got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if a.Key() != b.Key() {
		t.Errorf("reordered set produced a different key: %q vs %q", a.Key(), b.Key())
	}
}

func TestDimensionSetKey_Empty(t *testing.T) {
	if got := (DimensionSet{}).Key(); got != "" {
		t.Errorf("empty set Key() = %q, want empty", got)
	}
}

func TestDimensionSetHasNames(t *testing.T) {
	ds := DimensionSet{
		{Name: "TableName", Value: "users"},
		{Name: "GlobalSecondaryIndexName", Value: "by-email"},
	}

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{"exact match", []string{"GlobalSecondaryIndexName", "TableName"}, true},
		{"subset", []string{"TableName"}, false},
		{"superset", []string{"TableName", "GlobalSecondaryIndexName", "Operation"}, false},
		{"disjoint", []string{"QueueName", "Operation"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ds.HasNames(tt.names); got != tt.want {
				t.Errorf("HasNames(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}

func TestParseStatistic(t *testing.T) {
	for _, s := range []string{"Sum", "SampleCount", "Minimum", "Maximum", "Average"} {
		if _, err := ParseStatistic(s); err != nil {
			t.Errorf("ParseStatistic(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseStatistic("p99"); err == nil {
		t.Error("ParseStatistic(\"p99\") should fail; percentiles are extended statistics")
	}
	if IsStandard("p99.9") {
		t.Error("IsStandard(\"p99.9\") = true, want false")
	}
}

func TestStatisticSuffix(t *testing.T) {
	tests := []struct {
		stat Statistic
		want string
	}{
		{StatSum, "_sum"},
		{StatSampleCount, "_sample_count"},
		{StatMinimum, "_minimum"},
		{StatMaximum, "_maximum"},
		{StatAverage, "_average"},
	}
	for _, tt := range tests {
		if got := tt.stat.Suffix(); got != tt.want {
			t.Errorf("%s.Suffix() = %q, want %q", tt.stat, got, tt.want)
		}
	}
}
