package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
// ExchangeRate is expressed as units of this currency per 1 unit of the
// default currency. Exactly one currency carries IsDefault at any time; its
// effective rate is always 1 regardless of the stored value.
type Currency struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"` // e.g. "USD"
	Name          string          `json:"name"` // e.g. "US Dollar"
	Symbol        string          `json:"symbol"`
	DisplayFormat string          `json:"displayFormat"`
	DecimalPlaces int             `json:"decimalPlaces"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	IsDefault     bool            `json:"isDefault"`
	LastUpdated   *time.Time      `json:"lastUpdated"`
	AuditFields
}
