package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/core/ports"
	portsrepo "github.com/finbook/currency_sync/internal/core/ports/repositories"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/shopspring/decimal"
)

// systemUserID attributes seed writes that no human triggered.
const systemUserID = "SYSTEM"

// CurrencyService provides business logic for currency records. Rows are
// created administratively and rarely; rate updates go through the
// RateUpdateService instead.
type CurrencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
	fetcher      ports.RateFetcher
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, fetcher ports.RateFetcher) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo, fetcher: fetcher}
}

// CreateCurrency persists a new currency row.
func (s *CurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	if !req.IsDefault && !req.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive for non-default currencies", apperrors.ErrValidation)
	}

	existing, err := s.currencyRepo.FindCurrencyByCode(ctx, strings.ToUpper(req.Code))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing currency: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: currency code %s", apperrors.ErrDuplicate, req.Code)
	}

	now := time.Now().UTC()
	currency := domain.Currency{
		Code:          strings.ToUpper(req.Code),
		Name:          req.Name,
		Symbol:        req.Symbol,
		DisplayFormat: req.DisplayFormat,
		DecimalPlaces: req.DecimalPlaces,
		ExchangeRate:  req.ExchangeRate,
		IsDefault:     req.IsDefault,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}
	return &currency, nil
}

// GetCurrencyByCode retrieves a currency by its 3-letter code.
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currencyCode = strings.ToUpper(currencyCode)
	if len(currencyCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

// ListCurrencies retrieves all currencies.
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// ListAvailableCurrencies returns the code -> display-name map served by the
// rate mirrors, so admins can see what the store could hold before creating
// rows. The fetcher caches the list under the currency-list key.
func (s *CurrencyService) ListAvailableCurrencies(ctx context.Context) (map[string]string, error) {
	names, err := s.fetcher.FetchAvailableCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list available currencies: %w", err)
	}
	return names, nil
}

// SeedDefaultCurrencies inserts USD (default), EUR and GBP when the store is
// empty. Seed rates are placeholders; LastUpdated stays nil so the next
// staleness check triggers a real fetch.
func (s *CurrencyService) SeedDefaultCurrencies(ctx context.Context) ([]string, error) {
	count, err := s.currencyRepo.CountCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count currencies before seeding: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     systemUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: systemUserID,
	}
	seeds := []domain.Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", DisplayFormat: "%s%v", DecimalPlaces: 2, ExchangeRate: decimal.NewFromInt(1), IsDefault: true, AuditFields: audit},
		{Code: "EUR", Name: "Euro", Symbol: "€", DisplayFormat: "%s%v", DecimalPlaces: 2, ExchangeRate: decimal.NewFromFloat(0.92), AuditFields: audit},
		{Code: "GBP", Name: "British Pound", Symbol: "£", DisplayFormat: "%s%v", DecimalPlaces: 2, ExchangeRate: decimal.NewFromFloat(0.79), AuditFields: audit},
	}

	seeded := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		if err := s.currencyRepo.SaveCurrency(ctx, seed); err != nil {
			return seeded, fmt.Errorf("failed to seed currency %s: %w", seed.Code, err)
		}
		seeded = append(seeded, seed.Code)
	}
	return seeded, nil
}
