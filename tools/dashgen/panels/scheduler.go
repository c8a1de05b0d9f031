package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// JobRuns returns a timeseries panel showing job executions per hour by job
// and status.
func JobRuns() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Job Runs / h").
		Description("Scheduler job executions per hour by job and status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(increase(borsa_scheduler_job_runs_total{job="borsa"}[1h])) by (job_name, status)`,
			"{{job_name}} {{status}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// JobFailures returns a stat panel showing failed job runs in the past 24
// hours.
func JobFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Job Failures (24h)").
		Description("Failed scheduler runs across all jobs in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(6).
		WithTarget(PromQuery(`sum(increase(borsa_scheduler_job_runs_total{job="borsa",status="failed"}[24h]))`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// NextWarm returns a stat panel showing time until the next listing warm-up.
func NextWarm() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Listing Warm").
		Description("Time until the listing_warm job runs again").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(6).
		WithTarget(PromQuery(
			`borsa_scheduler_next_run_timestamp{job="borsa",job_name="listing_warm"} - time()`,
			"", "A",
		)).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}
