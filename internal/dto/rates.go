package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Endpoint health statuses reported by MonitorAPIHealth.
const (
	EndpointStatusHealthy = "healthy"
	EndpointStatusError   = "error"
	EndpointStatusFailed  = "failed"
)

// Integrity statuses reported by ValidateCurrencyIntegrity.
const (
	IntegrityStatusHealthy     = "healthy"
	IntegrityStatusIssuesFound = "issues_found"
)

// RateChange records one successfully reconciled currency.
type RateChange struct {
	Currency      string          `json:"currency"`
	OldRate       decimal.Decimal `json:"old_rate"`
	NewRate       decimal.Decimal `json:"new_rate"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

// UpdateRatesResult is the outcome of one reconciliation run. Failed lists
// currency codes absent from the fetched mapping; a non-empty Failed list
// alongside a non-empty Updated list is the expected partial-failure shape.
type UpdateRatesResult struct {
	Updated   []RateChange `json:"updated"`
	Failed    []string     `json:"failed"`
	Timestamp time.Time    `json:"timestamp"`
	DryRun    bool         `json:"dry_run,omitempty"`
}

// IntegrityReport is the outcome of one integrity pass.
type IntegrityReport struct {
	Status       string   `json:"integrity_status"`
	IssuesFound  []string `json:"issues_found"`
	FixesApplied []string `json:"fixes_applied"`
}

// EndpointHealth is one probe sample for a rate endpoint. It exists only for
// the duration of a report and is never persisted.
type EndpointHealth struct {
	Endpoint       string `json:"endpoint"`
	Status         string `json:"status"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	HTTPStatus     int    `json:"http_status,omitempty"`
	Error          string `json:"error,omitempty"`
}

// UpdateStatistics summarizes the freshness of the currency store.
type UpdateStatistics struct {
	TotalCurrencies   int        `json:"total_currencies"`
	WithPositiveRate  int        `json:"with_positive_rate"`
	DefaultCurrency   string     `json:"default_currency"`
	MostRecentUpdate  *time.Time `json:"most_recent_update"`
	NeedsUpdate       bool       `json:"needs_update"`
	NeverUpdated      int        `json:"never_updated"`
	UpdatedOver24hAgo int        `json:"updated_over_24h_ago"`
}

// CacheStatus is a snapshot of the rate cache for the status report.
type CacheStatus struct {
	Driver          string  `json:"driver"`
	TTLHours        float64 `json:"ttl_hours"`
	HasCurrencyList bool    `json:"has_currency_list"`
}

// StatusReport bundles health, statistics, integrity and cache state.
type StatusReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	APIHealth   []EndpointHealth `json:"api_health"`
	Statistics  UpdateStatistics `json:"statistics"`
	Integrity   IntegrityReport  `json:"integrity"`
	Cache       CacheStatus      `json:"cache"`
}
