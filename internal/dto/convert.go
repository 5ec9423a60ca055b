package dto

import "github.com/shopspring/decimal"

// ConvertRequest defines the query parameters for a conversion.
type ConvertRequest struct {
	Amount decimal.Decimal `form:"amount" binding:"required"`
	From   string          `form:"from" binding:"required,len=3"`
	To     string          `form:"to" binding:"required,len=3"`
}

// ConvertResponse defines the data returned for a conversion. Formatted is
// the converted amount rounded to the target currency's decimal places; it is
// omitted when the target currency is not in the store.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted,omitempty"`
}
