package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ActiveSessions returns a stat panel showing open explorer sessions.
func ActiveSessions() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Active Sessions").
		Description("Explorer sessions currently held by the registry").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`max(borsa_explore_sessions_active{job="borsa"})`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// LoadMoreRate returns a timeseries panel showing load-more calls per
// minute split by whether they fetched or were ignored.
func LoadMoreRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Load More / min").
		Description("Next-page requests per minute by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(borsa_explore_load_more_total{job="borsa"}[5m])) by (result) * 60`,
			"{{result}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SearchRate returns a timeseries panel showing searches per minute.
func SearchRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Searches / min").
		Description("Transitions into search mode per minute").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`sum(rate(borsa_explore_searches_total{job="borsa"}[5m])) * 60`, "searches/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
