package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, PolygonRequestsTotal)
	assert.NotNil(t, PolygonRequestDuration)
	assert.NotNil(t, PolygonDailyUsage)
	assert.NotNil(t, PolygonDailyLimitHits)
	assert.NotNil(t, QueryCacheHitsTotal)
	assert.NotNil(t, QueryCacheMissesTotal)
	assert.NotNil(t, QueryDedupedTotal)
	assert.NotNil(t, QueryRetriesTotal)
	assert.NotNil(t, QueryEvictionsTotal)
	assert.NotNil(t, QueryCacheEntries)
	assert.NotNil(t, ExploreSessionsActive)
	assert.NotNil(t, ExploreLoadMoreTotal)
	assert.NotNil(t, ExploreSearchesTotal)
	assert.NotNil(t, SchedulerJobRunsTotal)
}

func TestPolygonRequestDuration_Observes(t *testing.T) {
	t.Parallel()

	var before dto.Metric
	require.NoError(t, PolygonRequestDuration.Write(&before))

	PolygonRequestDuration.Observe(0.25)

	var after dto.Metric
	require.NoError(t, PolygonRequestDuration.Write(&after))
	assert.Equal(t,
		before.GetHistogram().GetSampleCount()+1,
		after.GetHistogram().GetSampleCount(),
	)
}

func TestSchedulerJobRunsTotal_Labels(t *testing.T) {
	t.Parallel()

	c := SchedulerJobRunsTotal.WithLabelValues("cache_gc", "success")
	before := ptestutil.ToFloat64(c)
	c.Inc()
	assert.InDelta(t, before+1, ptestutil.ToFloat64(c), 0.001)
}
