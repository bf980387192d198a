package collector

import (
	"context"
	"sync"
	"time"

	"cumulus-hq/cumulus/pkg/cloudwatch"
	"cumulus-hq/cumulus/pkg/config"
)

// DimensionSource resolves the concrete dimension-sets to query for a rule.
// tagResourceIDs carries the resource ids derived from the rule's tag
// selection; empty when the rule has none.
type DimensionSource interface {
	Get(ctx context.Context, rule *config.MetricRule, tagResourceIDs []string) ([]cloudwatch.DimensionSet, error)
}

// apiDimensionSource enumerates reporting dimension combinations through the
// CloudWatch ListMetrics capability and filters them by the rule's selector
// and tag-derived resource ids. It never synthesizes combinations that do not
// exist upstream.
type apiDimensionSource struct {
	client   cloudwatch.MetricsAPI
	observer Observer
}

// NewDimensionSource returns the uncached ListMetrics-backed source.
func NewDimensionSource(client cloudwatch.MetricsAPI, observer Observer) DimensionSource {
	return &apiDimensionSource{client: client, observer: observer}
}

func (s *apiDimensionSource) Get(ctx context.Context, rule *config.MetricRule, tagResourceIDs []string) ([]cloudwatch.DimensionSet, error) {
	if len(rule.Dimensions) == 0 {
		// The dimensionless series; nothing to enumerate.
		return []cloudwatch.DimensionSet{{}}, nil
	}

	enumerated, err := s.client.ListMetrics(ctx, rule.Namespace, rule.MetricName, rule.Dimensions)
	s.observer.APIRequest("listMetrics", rule.Namespace)
	if err != nil {
		return nil, err
	}

	var sets []cloudwatch.DimensionSet
	for _, ds := range enumerated {
		if !ds.HasNames(rule.Dimensions) {
			continue
		}
		if !rule.Selector.Match(ds) {
			continue
		}
		if !tagMatch(rule, ds, tagResourceIDs) {
			continue
		}
		sets = append(sets, ds)
	}
	return sets, nil
}

// tagMatch keeps dimension-sets whose resource-id dimension value was derived
// from the rule's tag selection. Tag-derived ids intersect with, rather than
// replace, the other selection modes.
func tagMatch(rule *config.MetricRule, ds cloudwatch.DimensionSet, tagResourceIDs []string) bool {
	if rule.TagSelect == nil {
		return true
	}
	value, ok := ds.Value(rule.TagSelect.ResourceIDDimension)
	if !ok {
		return false
	}
	for _, id := range tagResourceIDs {
		if id == value {
			return true
		}
	}
	return false
}

// CachingDimensionSource decorates a DimensionSource with a per-rule TTL
// cache. Entries are refreshed lazily on the first read past their TTL;
// concurrent refreshes of the same entry may both resolve but entries are
// replaced atomically, so readers never observe a torn entry. A rule TTL of
// zero bypasses the cache entirely.
type CachingDimensionSource struct {
	source DimensionSource

	mu      sync.RWMutex
	entries map[*config.MetricRule]*dimensionCacheEntry

	now func() time.Time
}

type dimensionCacheEntry struct {
	sets      []cloudwatch.DimensionSet
	fetchedAt time.Time
	ttl       time.Duration
}

// NewCachingDimensionSource wraps source with the dimension cache.
func NewCachingDimensionSource(source DimensionSource) *CachingDimensionSource {
	return &CachingDimensionSource{
		source:  source,
		entries: make(map[*config.MetricRule]*dimensionCacheEntry),
		now:     time.Now,
	}
}

func (c *CachingDimensionSource) Get(ctx context.Context, rule *config.MetricRule, tagResourceIDs []string) ([]cloudwatch.DimensionSet, error) {
	if rule.CacheTTL <= 0 {
		return c.source.Get(ctx, rule, tagResourceIDs)
	}

	now := c.now()
	c.mu.RLock()
	entry := c.entries[rule]
	c.mu.RUnlock()
	if entry != nil && now.Sub(entry.fetchedAt) < entry.ttl {
		return entry.sets, nil
	}

	sets, err := c.source.Get(ctx, rule, tagResourceIDs)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[rule] = &dimensionCacheEntry{sets: sets, fetchedAt: now, ttl: rule.CacheTTL}
	c.mu.Unlock()
	return sets, nil
}
