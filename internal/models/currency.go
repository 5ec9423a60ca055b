package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency row as persisted.
type Currency struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"` // 3-letter uppercase, e.g. "USD"
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	DisplayFormat string          `json:"displayFormat"`
	DecimalPlaces int             `json:"decimalPlaces"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"` // units of this currency per 1 unit of the default currency
	IsDefault     bool            `json:"isDefault"`
	LastUpdated   *time.Time      `json:"lastUpdated"` // nil means never updated
	AuditFields
}
