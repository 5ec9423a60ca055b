package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const usdTableJSON = `{"date":"2025-06-01","usd":{"eur":0.92,"gbp":0.79,"jpy":155.2}}`

type RateFetcherServiceTestSuite struct {
	suite.Suite
	rateCache *cache.MemoryCache
}

func (suite *RateFetcherServiceTestSuite) SetupTest() {
	suite.rateCache = cache.NewMemoryCache()
}

func (suite *RateFetcherServiceTestSuite) newFetcher(endpoints ...string) *services.RateFetcherService {
	return services.NewRateFetcherService(endpoints, 2*time.Second, suite.rateCache, time.Hour, testLogger())
}

func rateServer(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_Success() {
	server := rateServer(usdTableJSON, http.StatusOK)
	defer server.Close()

	fetcher := suite.newFetcher(server.URL)
	rates, err := fetcher.FetchRates(context.Background(), "USD", nil)

	suite.Require().NoError(err)
	suite.Len(rates, 3)
	suite.True(rates["eur"].Equal(decimal.NewFromFloat(0.92)))
	suite.True(rates["jpy"].Equal(decimal.NewFromFloat(155.2)))
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_MirrorFallback() {
	down := rateServer("oops", http.StatusInternalServerError)
	defer down.Close()
	up := rateServer(usdTableJSON, http.StatusOK)
	defer up.Close()

	fetcher := suite.newFetcher(down.URL, up.URL)
	rates, err := fetcher.FetchRates(context.Background(), "usd", nil)

	suite.Require().NoError(err, "a healthy lower-priority mirror must mask the outage")
	suite.True(rates["gbp"].Equal(decimal.NewFromFloat(0.79)))
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_MalformedBodyFallsThrough() {
	bad := rateServer(`{"usd":"not a table"}`, http.StatusOK)
	defer bad.Close()
	good := rateServer(usdTableJSON, http.StatusOK)
	defer good.Close()

	fetcher := suite.newFetcher(bad.URL, good.URL)
	rates, err := fetcher.FetchRates(context.Background(), "usd", nil)

	suite.Require().NoError(err)
	suite.Len(rates, 3)
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_AllMirrorsDown() {
	down1 := rateServer("oops", http.StatusBadGateway)
	defer down1.Close()
	down2 := rateServer("oops", http.StatusNotFound)
	defer down2.Close()

	fetcher := suite.newFetcher(down1.URL, down2.URL)
	rates, err := fetcher.FetchRates(context.Background(), "usd", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateSourceExhausted)
	suite.Contains(err.Error(), "usd")
	suite.Nil(rates)
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_CacheHitSkipsNetwork() {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(usdTableJSON))
	}))
	defer server.Close()

	fetcher := suite.newFetcher(server.URL)
	ctx := context.Background()

	first, err := fetcher.FetchRates(ctx, "usd", nil)
	suite.Require().NoError(err)
	second, err := fetcher.FetchRates(ctx, "usd", nil)
	suite.Require().NoError(err)

	suite.Equal(int64(1), hits.Load(), "second call within the TTL must be served from cache")
	suite.Equal(len(first), len(second))
	suite.True(first["eur"].Equal(second["eur"]))
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_TargetSubset() {
	server := rateServer(usdTableJSON, http.StatusOK)
	defer server.Close()

	fetcher := suite.newFetcher(server.URL)
	rates, err := fetcher.FetchRates(context.Background(), "usd", []string{"EUR", "GBP"})

	suite.Require().NoError(err)
	suite.Len(rates, 2)
	suite.Contains(rates, "eur")
	suite.Contains(rates, "gbp")
	suite.NotContains(rates, "jpy")
}

func (suite *RateFetcherServiceTestSuite) TestFetchRates_SubsetCachesIndependently() {
	server := rateServer(usdTableJSON, http.StatusOK)
	defer server.Close()

	fetcher := suite.newFetcher(server.URL)
	ctx := context.Background()

	_, err := fetcher.FetchRates(ctx, "usd", []string{"eur"})
	suite.Require().NoError(err)

	suite.True(suite.rateCache.Contains(ctx, cache.RatesKey("usd", []string{"eur"})))
	suite.False(suite.rateCache.Contains(ctx, cache.RatesKey("usd", nil)),
		"a subset fetch must not populate the full-table key")
}

func (suite *RateFetcherServiceTestSuite) TestFetchAvailableCurrencies() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/currencies.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"usd":"US Dollar","eur":"Euro"}`))
	}))
	defer server.Close()

	fetcher := suite.newFetcher(server.URL)
	names, err := fetcher.FetchAvailableCurrencies(context.Background())

	suite.Require().NoError(err)
	suite.Equal("US Dollar", names["usd"])
	suite.Equal("Euro", names["eur"])
	suite.True(suite.rateCache.Contains(context.Background(), cache.CurrencyListKey))
}

func (suite *RateFetcherServiceTestSuite) TestCheckEndpointHealth() {
	healthy := rateServer(usdTableJSON, http.StatusOK)
	defer healthy.Close()
	erroring := rateServer(`{"wrong":"shape"}`, http.StatusOK)
	defer erroring.Close()
	failing := rateServer("oops", http.StatusServiceUnavailable)
	defer failing.Close()

	fetcher := suite.newFetcher(healthy.URL, erroring.URL, failing.URL)
	samples := fetcher.CheckEndpointHealth(context.Background())

	suite.Require().Len(samples, 3, "every endpoint gets a sample regardless of outcome")
	suite.Equal(dto.EndpointStatusHealthy, samples[0].Status)
	suite.Equal(dto.EndpointStatusError, samples[1].Status)
	suite.Equal(dto.EndpointStatusFailed, samples[2].Status)
	suite.Equal(http.StatusServiceUnavailable, samples[2].HTTPStatus)
	suite.NotEmpty(samples[2].Error)
}

func TestRateFetcherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateFetcherServiceTestSuite))
}
