package cache

import (
	"sort"
	"strings"
	"time"
)

// DefaultTTL bounds how long a cached rate table is served before a refetch.
const DefaultTTL = time.Hour

// CurrencyListKey caches the available-currencies name map.
const CurrencyListKey = "currencies_list"

// RatesKeyPrefix prefixes every cached rate-table key.
const RatesKeyPrefix = "exchange_rates_"

// ConversionKeyPrefix prefixes cached scalar pair rates.
const ConversionKeyPrefix = "conversion_rate_"

// CommonCurrencies are the bases whose rate-table keys get invalidated after
// every reconciliation, in addition to prefix invalidation.
var CommonCurrencies = []string{"usd", "eur", "gbp", "jpy", "cad", "aud"}

// RatesKey builds the cache key for a base currency and an optional target
// subset. Codes are lowercased and targets sorted so that equivalent requests
// share one entry.
func RatesKey(base string, targets []string) string {
	var b strings.Builder
	b.WriteString(RatesKeyPrefix)
	b.WriteString(strings.ToLower(base))
	if len(targets) > 0 {
		sorted := make([]string, len(targets))
		for i, t := range targets {
			sorted[i] = strings.ToLower(t)
		}
		sort.Strings(sorted)
		b.WriteString("_")
		b.WriteString(strings.Join(sorted, "_"))
	}
	return b.String()
}

// ConversionKey builds the cache key for a scalar pair rate. The pair is
// ordered: eur->gbp and gbp->eur cache independently.
func ConversionKey(from, to string) string {
	return ConversionKeyPrefix + strings.ToLower(from) + "_" + strings.ToLower(to)
}
