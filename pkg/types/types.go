// Package domain defines the core business types for the stock explorer.
package domain

import "time"

// Stock is a single ticker from the reference tickers listing. Stocks are
// read-only; the ticker is the only identity within a result set.
type Stock struct {
	Ticker          string    `json:"ticker"`
	Name            string    `json:"name"`
	Market          string    `json:"market,omitempty"`
	Locale          string    `json:"locale,omitempty"`
	PrimaryExchange string    `json:"primary_exchange"`
	Type            string    `json:"type,omitempty"`
	Active          bool      `json:"active"`
	CurrencyName    string    `json:"currency_name,omitempty"`
	CIK             string    `json:"cik,omitempty"`
	CompositeFIGI   string    `json:"composite_figi,omitempty"`
	ShareClassFIGI  string    `json:"share_class_figi,omitempty"`
	LastUpdatedUTC  string    `json:"last_updated_utc,omitempty"`
	MarketCap       *float64  `json:"market_cap,omitempty"`
	Description     string    `json:"description,omitempty"`
	Branding        *Branding `json:"branding,omitempty"`
}

// Branding holds optional logo assets for a ticker.
type Branding struct {
	LogoURL string `json:"logo_url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// Status returns the display label for the active flag.
func (s *Stock) Status() string {
	if s.Active {
		return "Active"
	}
	return "Inactive"
}

// LogoURL returns the branding logo, or "" when the ticker has none.
func (s *Stock) LogoURL() string {
	if s.Branding == nil {
		return ""
	}
	return s.Branding.LogoURL
}

// Job run statuses.
const (
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// JobRun records a single execution of a scheduled job.
type JobRun struct {
	ID          string     `json:"id"`
	JobName     string     `json:"job_name"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status"`
	ErrorText   string     `json:"error_text,omitempty"`
	Affected    *int       `json:"affected,omitempty"`
}

// SystemState is a point-in-time summary of the running service.
type SystemState struct {
	PolygonConfigured bool     `json:"polygon_configured"`
	CacheEntries      int      `json:"cache_entries"`
	SessionsActive    int      `json:"sessions_active"`
	DailyLimit        int64    `json:"daily_limit"`
	DailyUsed         int64    `json:"daily_used"`
	Jobs              []JobRun `json:"jobs"`
}
