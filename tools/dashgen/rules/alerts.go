package rules

// AlertRules returns a PrometheusRule CR containing alert rules for borsa
// operational monitoring.
func AlertRules() PrometheusRule {
	return newPrometheusRule("alerts", newGroup("alerts",
		alert("Down",
			`absent(up{job="borsa"})`, "2m", "critical",
			"Borsa is down",
			"The borsa job has been absent for more than 2 minutes."),
		alert("ReadinessDown",
			`borsa_readyz_up == 0`, "2m", "critical",
			"Borsa readiness check is failing",
			"The readiness probe has been reporting not-ready for more than 2 minutes. Check that polygon.api_key is set."),
		alert("HighErrorRate",
			`borsa:http_errors:rate5m / borsa:http_requests:rate5m > 0.05`, "5m", "warning",
			"High HTTP error rate on borsa",
			"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
		alert("PolygonFailures",
			`borsa:polygon_failures:rate5m > 0.1`, "5m", "warning",
			"Polygon requests are failing",
			"Polygon tickers requests have been failing at more than 0.1/s for 5 minutes."),
		alert("PolygonUnauthorized",
			`increase(borsa_polygon_requests_total{outcome="unauthorized"}[5m]) > 0`, "0m", "critical",
			"Polygon rejected the API key",
			"Polygon answered 401 in the last 5 minutes. The configured API key is invalid or revoked."),
		alert("PolygonQuotaHigh",
			`borsa_polygon_daily_usage > 4000`, "5m", "warning",
			"Polygon daily usage is above 80% of the quota",
			"Daily Polygon usage has exceeded 4000 calls (quota is 5000)."),
		alert("PolygonQuotaReached",
			`increase(borsa_polygon_daily_limit_hits_total[5m]) > 0`, "0m", "critical",
			"Polygon daily quota has been reached",
			"The configured Polygon daily quota is exhausted. Listing fetches fail until the window rolls over."),
		alert("JobFailures",
			`increase(borsa_scheduler_job_runs_total{status="failed"}[30m]) > 0`, "1m", "warning",
			"Scheduler job failures detected",
			"Job {{ $labels.job_name }} failed at least once in the last 30 minutes."),
	))
}
