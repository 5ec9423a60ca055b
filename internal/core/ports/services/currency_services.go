package services

import (
	"context"

	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// ListAvailableCurrencies returns the lowercase code to display-name map
	// of every currency the rate mirrors serve, cached for one TTL.
	ListAvailableCurrencies(ctx context.Context) (map[string]string, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// SeedDefaultCurrencies inserts a minimal USD/EUR/GBP set when the store
	// is empty. Returns the codes inserted, if any.
	SeedDefaultCurrencies(ctx context.Context) ([]string, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
