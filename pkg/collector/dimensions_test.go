package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"cumulus-hq/cumulus/internal/testutil"
	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

func elbRule(selector config.DimensionSelector) *config.MetricRule {
	return &config.MetricRule{
		Namespace:  "AWS/ELB",
		MetricName: "RequestCount",
		Dimensions: []string{"LoadBalancerName"},
		Selector:   selector,
	}
}

func elbSets(names ...string) map[string][]cloudwatch.DimensionSet {
	sets := make([]cloudwatch.DimensionSet, 0, len(names))
	for _, n := range names {
		sets = append(sets, cloudwatch.DimensionSet{{Name: "LoadBalancerName", Value: n}})
	}
	return map[string][]cloudwatch.DimensionSet{"AWS/ELB/RequestCount": sets}
}

func setValues(t *testing.T, sets []cloudwatch.DimensionSet) []string {
	t.Helper()
	var values []string
	for _, ds := range sets {
		v, ok := ds.Value("LoadBalancerName")
		if !ok {
			t.Fatalf("set %v lacks LoadBalancerName", ds)
		}
		values = append(values, v)
	}
	return values
}

func TestDimensionSourceDimensionless(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{}
	src := NewDimensionSource(fake, NopObserver{})

	rule := &config.MetricRule{
		Namespace:  "AWS/Billing",
		MetricName: "EstimatedCharges",
		Selector:   config.MatchAll{},
	}
	sets, err := src.Get(context.Background(), rule, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(sets) != 1 || len(sets[0]) != 0 {
		t.Fatalf("got %v, want the single empty set", sets)
	}
	if fake.ListMetricsCalls != 0 {
		t.Errorf("dimensionless rule should not call ListMetrics, got %d calls", fake.ListMetricsCalls)
	}
}

func TestDimensionSourceFiltersMissingNames(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{
		ListMetricsResults: map[string][]cloudwatch.DimensionSet{
			"AWS/ELB/RequestCount": {
				{{Name: "LoadBalancerName", Value: "web"}},
				{{Name: "AvailabilityZone", Value: "us-east-1a"}}, // wrong names
				{}, // dimensionless series of the same metric
			},
		},
	}
	src := NewDimensionSource(fake, NopObserver{})

	sets, err := src.Get(context.Background(), elbRule(config.MatchAll{}), nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got := setValues(t, sets); len(got) != 1 || got[0] != "web" {
		t.Errorf("got %v, want [web]", got)
	}
}

func TestDimensionSourceExactSelect(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{ListMetricsResults: elbSets("web", "api", "batch")}
	src := NewDimensionSource(fake, NopObserver{})

	sel := config.ExactSelect{"LoadBalancerName": {"web", "api"}}
	sets, err := src.Get(context.Background(), elbRule(sel), nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got := setValues(t, sets); len(got) != 2 || got[0] != "web" || got[1] != "api" {
		t.Errorf("got %v, want [web api]", got)
	}
}

func TestDimensionSourceRegexSelect(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{ListMetricsResults: elbSets("prod-east", "prod-west", "staging")}
	src := NewDimensionSource(fake, NopObserver{})

	sel, err := config.NewRegexSelect(map[string][]string{"LoadBalancerName": {"^prod"}})
	if err != nil {
		t.Fatalf("NewRegexSelect error: %v", err)
	}
	sets, err := src.Get(context.Background(), elbRule(sel), nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got := setValues(t, sets); len(got) != 2 || got[0] != "prod-east" || got[1] != "prod-west" {
		t.Errorf("got %v, want [prod-east prod-west]", got)
	}
}

func TestDimensionSourceRegexMatchesAnywhere(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{ListMetricsResults: elbSets("east-prod-1", "staging")}
	src := NewDimensionSource(fake, NopObserver{})

	sel, err := config.NewRegexSelect(map[string][]string{"LoadBalancerName": {"prod"}})
	if err != nil {
		t.Fatalf("NewRegexSelect error: %v", err)
	}
	sets, err := src.Get(context.Background(), elbRule(sel), nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got := setValues(t, sets); len(got) != 1 || got[0] != "east-prod-1" {
		t.Errorf("got %v, want [east-prod-1]", got)
	}
}

func TestDimensionSourceTagIntersect(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{
		ListMetricsResults: map[string][]cloudwatch.DimensionSet{
			"AWS/DynamoDB/ConsumedReadCapacityUnits": {
				{{Name: "TableName", Value: "orders"}},
				{{Name: "TableName", Value: "sessions"}},
			},
		},
	}
	src := NewDimensionSource(fake, NopObserver{})

	rule := &config.MetricRule{
		Namespace:  "AWS/DynamoDB",
		MetricName: "ConsumedReadCapacityUnits",
		Dimensions: []string{"TableName"},
		Selector:   config.MatchAll{},
		TagSelect: &config.TagSelect{
			ResourceTypeSelection: "dynamodb:table",
			ResourceIDDimension:   "TableName",
		},
	}

	sets, err := src.Get(context.Background(), rule, []string{"orders"})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	if v, _ := sets[0].Value("TableName"); v != "orders" {
		t.Errorf("got %q, want orders", v)
	}

	// No tagged resources means no series at all.
	sets, err = src.Get(context.Background(), rule, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("got %v, want none", sets)
	}
}

func TestDimensionSourceError(t *testing.T) {
	wantErr := errors.New("throttled")
	fake := &testutil.FakeMetricsAPI{Errs: map[string]error{"ListMetrics": wantErr}}
	src := NewDimensionSource(fake, NopObserver{})

	_, err := src.Get(context.Background(), elbRule(config.MatchAll{}), nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Get error = %v, want %v", err, wantErr)
	}
}

func TestCachingDimensionSourceTTL(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{ListMetricsResults: elbSets("web")}
	cache := NewCachingDimensionSource(NewDimensionSource(fake, NopObserver{}))

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	rule := elbRule(config.MatchAll{})
	rule.CacheTTL = 5 * time.Minute

	for i := 0; i < 3; i++ {
		if _, err := cache.Get(context.Background(), rule, nil); err != nil {
			t.Fatalf("Get error: %v", err)
		}
	}
	if fake.ListMetricsCalls != 1 {
		t.Fatalf("within TTL: %d ListMetrics calls, want 1", fake.ListMetricsCalls)
	}

	// Past the TTL the entry is refreshed lazily.
	now = now.Add(5*time.Minute + time.Second)
	sets, err := cache.Get(context.Background(), rule, nil)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if fake.ListMetricsCalls != 2 {
		t.Fatalf("past TTL: %d ListMetrics calls, want 2", fake.ListMetricsCalls)
	}
	if got := setValues(t, sets); len(got) != 1 || got[0] != "web" {
		t.Errorf("got %v, want [web]", got)
	}
}

func TestCachingDimensionSourceZeroTTLBypasses(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{ListMetricsResults: elbSets("web")}
	cache := NewCachingDimensionSource(NewDimensionSource(fake, NopObserver{}))

	rule := elbRule(config.MatchAll{})
	for i := 0; i < 3; i++ {
		if _, err := cache.Get(context.Background(), rule, nil); err != nil {
			t.Fatalf("Get error: %v", err)
		}
	}
	if fake.ListMetricsCalls != 3 {
		t.Errorf("TTL 0: %d ListMetrics calls, want 3", fake.ListMetricsCalls)
	}
}

func TestCachingDimensionSourceErrorNotCached(t *testing.T) {
	fake := &testutil.FakeMetricsAPI{
		ListMetricsResults: elbSets("web"),
		Errs:               map[string]error{"ListMetrics": errors.New("throttled")},
	}
	cache := NewCachingDimensionSource(NewDimensionSource(fake, NopObserver{}))

	rule := elbRule(config.MatchAll{})
	rule.CacheTTL = time.Minute

	if _, err := cache.Get(context.Background(), rule, nil); err == nil {
		t.Fatal("expected error")
	}

	// The failure must not leave a poisoned entry behind.
	delete(fake.Errs, "ListMetrics")
	sets, err := cache.Get(context.Background(), rule, nil)
	if err != nil {
		t.Fatalf("Get after recovery error: %v", err)
	}
	if got := setValues(t, sets); len(got) != 1 || got[0] != "web" {
		t.Errorf("got %v, want [web]", got)
	}
}
