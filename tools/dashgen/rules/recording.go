package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("recording-rules", newGroup("recording",
		record("http_requests:rate5m",
			`sum(rate(borsa_http_requests_total[5m]))`),
		record("http_errors:rate5m",
			`sum(rate(borsa_http_requests_total{status=~"5.."}[5m]))`),
		record("polygon_requests:rate5m",
			`sum(rate(borsa_polygon_requests_total[5m])) by (outcome)`),
		record("polygon_failures:rate5m",
			`sum(rate(borsa_polygon_requests_total{outcome!="ok"}[5m]))`),
		record("query_cache_hit_ratio:rate5m",
			`sum(rate(borsa_query_cache_hits_total[5m])) / (sum(rate(borsa_query_cache_hits_total[5m])) + sum(rate(borsa_query_cache_misses_total[5m])))`),
		record("query_retries:rate5m",
			`sum(rate(borsa_query_retries_total[5m]))`),
	))
}
