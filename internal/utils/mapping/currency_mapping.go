package mapping

import (
	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/models"
)

// ToModelCurrency converts a domain Currency to a model Currency
func ToModelCurrency(d domain.Currency) models.Currency {
	return models.Currency{
		ID:            d.ID,
		Code:          d.Code,
		Name:          d.Name,
		Symbol:        d.Symbol,
		DisplayFormat: d.DisplayFormat,
		DecimalPlaces: d.DecimalPlaces,
		ExchangeRate:  d.ExchangeRate,
		IsDefault:     d.IsDefault,
		LastUpdated:   d.LastUpdated,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCurrency converts a model Currency to a domain Currency
func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		ID:            m.ID,
		Code:          m.Code,
		Name:          m.Name,
		Symbol:        m.Symbol,
		DisplayFormat: m.DisplayFormat,
		DecimalPlaces: m.DecimalPlaces,
		ExchangeRate:  m.ExchangeRate,
		IsDefault:     m.IsDefault,
		LastUpdated:   m.LastUpdated,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCurrencySlice converts a slice of model Currencies to a slice of domain Currencies
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	ds := make([]domain.Currency, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCurrency(m)
	}
	return ds
}
