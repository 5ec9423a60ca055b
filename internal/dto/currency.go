package dto

import (
	"time"

	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	Code          string          `json:"code" binding:"required,currencycode"`
	Name          string          `json:"name" binding:"required"`
	Symbol        string          `json:"symbol" binding:"required"`
	DisplayFormat string          `json:"displayFormat"`
	DecimalPlaces int             `json:"decimalPlaces"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IsDefault     bool            `json:"isDefault"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	DisplayFormat string          `json:"displayFormat"`
	DecimalPlaces int             `json:"decimalPlaces"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IsDefault     bool            `json:"isDefault"`
	LastUpdated   *time.Time      `json:"lastUpdated"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO
func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:            curr.ID,
		Code:          curr.Code,
		Name:          curr.Name,
		Symbol:        curr.Symbol,
		DisplayFormat: curr.DisplayFormat,
		DecimalPlaces: curr.DecimalPlaces,
		ExchangeRate:  curr.ExchangeRate,
		IsDefault:     curr.IsDefault,
		LastUpdated:   curr.LastUpdated,
	}
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	res := make([]CurrencyResponse, len(currencies))
	for i, curr := range currencies {
		res[i] = ToCurrencyResponse(&curr)
	}
	return res
}
