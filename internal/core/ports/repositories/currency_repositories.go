package repositories

import (
	"context"
	"time"

	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves the currency with the given code. When
	// duplicate rows exist the one with the lowest ID wins.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// FindDefaultCurrency retrieves the currency carrying the default flag.
	// Returns apperrors.ErrNotFound when no row is flagged.
	FindDefaultCurrency(ctx context.Context) (*domain.Currency, error)

	// ListCurrencies retrieves all currency rows ordered by ID.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// CountCurrencies returns the total number of currency rows.
	CountCurrencies(ctx context.Context) (int64, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency row.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateRate writes a freshly fetched exchange rate and advances the
	// last-updated timestamp for a single row.
	UpdateRate(ctx context.Context, currencyID int64, rate decimal.Decimal, updatedAt time.Time) error

	// SetDefaultFlag sets or clears the default flag on a single row.
	SetDefaultFlag(ctx context.Context, currencyID int64, isDefault bool) error

	// DeleteCurrencyByID removes a single row. Used only for duplicate cleanup.
	DeleteCurrencyByID(ctx context.Context, currencyID int64) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
