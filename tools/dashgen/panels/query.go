package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CacheHitRatio returns a stat panel showing the share of fetches answered
// from fresh cached data.
func CacheHitRatio() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Cache Hit Ratio").
		Description("Fetches served from fresh cache as a percentage of all fetches").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(8).
		WithTarget(PromQuery(`borsa:query_cache_hit_ratio:rate5m * 100`, "", "A")).
		Unit("percent").
		Thresholds(ThresholdsRedGreen(50)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// CacheEntries returns a stat panel showing the number of cached queries.
func CacheEntries() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Cache Entries").
		Description("Query results currently held in memory").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(8).
		WithTarget(PromQuery(`max(borsa_query_cache_entries{job="borsa"})`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// Evictions returns a stat panel showing cache evictions over the past hour.
func Evictions() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Evictions (1h)").
		Description("Entries dropped by cache garbage collection in the last hour").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(8).
		WithTarget(PromQuery(`increase(borsa_query_evictions_total{job="borsa"}[1h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}

// FetchActivity returns a timeseries panel comparing misses, dedupes and
// retries per second.
func FetchActivity() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Activity").
		Description("Cache misses, deduplicated fetches and retries per second").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(`sum(rate(borsa_query_cache_misses_total{job="borsa"}[5m]))`, "misses", "A")).
		WithTarget(PromQuery(`sum(rate(borsa_query_deduped_total{job="borsa"}[5m]))`, "deduped", "B")).
		WithTarget(PromQuery(`borsa:query_retries:rate5m`, "retries", "C")).
		Unit("ops").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
