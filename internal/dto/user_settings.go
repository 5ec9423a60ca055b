package dto

// SetUserCurrencyRequest defines the body for setting a user's preferred currency.
type SetUserCurrencyRequest struct {
	Code string `json:"code" binding:"required,currencycode"`
}

// UserCurrencyResponse defines the data returned for a user's currency preference.
type UserCurrencyResponse struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}
