package services

import (
	"context"

	"github.com/finbook/currency_sync/internal/dto"
	"github.com/shopspring/decimal"
)

// RateUpdaterSvc reconciles fetched rates onto the currency store.
type RateUpdaterSvc interface {
	// UpdateDatabaseRates fetches rates for the default currency and applies
	// them to the resolved target rows. A currency missing from the fetched
	// mapping lands in the failed list without aborting the batch.
	UpdateDatabaseRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error)

	// PreviewRates computes the same result as UpdateDatabaseRates without
	// writing to the store or touching the cache.
	PreviewRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error)

	// RatesNeedUpdate reports whether rate data is stale: no non-default
	// currency was ever updated, or the freshest one is older than the
	// staleness threshold.
	RatesNeedUpdate(ctx context.Context) (bool, error)
}

// ConversionSvc converts amounts between currency codes.
type ConversionSvc interface {
	// Convert converts an amount between two currency codes, triangulating
	// through USD when no direct rate exists.
	Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error)

	// ConvertToUserCurrency converts into the user's configured currency,
	// falling back to the system default currency.
	ConvertToUserCurrency(ctx context.Context, amount decimal.Decimal, fromCode, userID string) (decimal.Decimal, error)

	// ConvertFromUserCurrency converts out of the user's configured currency,
	// falling back to the system default currency.
	ConvertFromUserCurrency(ctx context.Context, amount decimal.Decimal, toCode, userID string) (decimal.Decimal, error)
}

// IntegritySvc scans the currency store for invariant violations and repairs
// the ones that have a safe automatic fix.
type IntegritySvc interface {
	ValidateCurrencyIntegrity(ctx context.Context) (*dto.IntegrityReport, error)
}

// StatusSvc aggregates endpoint health, staleness statistics and integrity
// status for operational visibility.
type StatusSvc interface {
	MonitorAPIHealth(ctx context.Context) []dto.EndpointHealth
	GetUpdateStatistics(ctx context.Context) (*dto.UpdateStatistics, error)
	GenerateStatusReport(ctx context.Context) (*dto.StatusReport, error)
}
