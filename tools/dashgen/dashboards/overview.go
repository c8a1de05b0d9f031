// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/borsa/tools/dashgen/panels"
)

// BuildOverview constructs the Borsa Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Borsa Overview").
		Uid("borsa-overview").
		Tags([]string{"borsa", "polygon"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Polygon API.
	b.WithRow(dashboard.NewRowBuilder("Polygon API").
		WithPanel(panels.RequestsByOutcome()).
		WithPanel(panels.PolygonLatency()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	// Row 4: Query cache.
	b.WithRow(dashboard.NewRowBuilder("Query Cache").
		WithPanel(panels.CacheHitRatio()).
		WithPanel(panels.CacheEntries()).
		WithPanel(panels.Evictions()).
		WithPanel(panels.FetchActivity()))

	// Row 5: Explorer.
	b.WithRow(dashboard.NewRowBuilder("Explorer").
		WithPanel(panels.ActiveSessions()).
		WithPanel(panels.LoadMoreRate()).
		WithPanel(panels.SearchRate()))

	// Row 6: Scheduler.
	b.WithRow(dashboard.NewRowBuilder("Scheduler").
		WithPanel(panels.JobRuns()).
		WithPanel(panels.JobFailures()).
		WithPanel(panels.NextWarm()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
