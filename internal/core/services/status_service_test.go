package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/core/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/finbook/currency_sync/internal/platform/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateUpdaterSvc ---
type MockRateUpdaterSvc struct {
	mock.Mock
}

func (m *MockRateUpdaterSvc) UpdateDatabaseRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error) {
	args := m.Called(ctx, targetCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateRatesResult), args.Error(1)
}

func (m *MockRateUpdaterSvc) PreviewRates(ctx context.Context, targetCodes []string) (*dto.UpdateRatesResult, error) {
	args := m.Called(ctx, targetCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateRatesResult), args.Error(1)
}

func (m *MockRateUpdaterSvc) RatesNeedUpdate(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// --- Mock IntegritySvc ---
type MockIntegritySvc struct {
	mock.Mock
}

func (m *MockIntegritySvc) ValidateCurrencyIntegrity(ctx context.Context) (*dto.IntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IntegrityReport), args.Error(1)
}

type StatusServiceTestSuite struct {
	suite.Suite
	mockRepo      *MockCurrencyRepository
	mockFetcher   *MockRateFetcher
	mockUpdater   *MockRateUpdaterSvc
	mockIntegrity *MockIntegritySvc
	rateCache     *cache.MemoryCache
	service       *services.StatusService
}

func (suite *StatusServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.mockFetcher = new(MockRateFetcher)
	suite.mockUpdater = new(MockRateUpdaterSvc)
	suite.mockIntegrity = new(MockIntegritySvc)
	suite.rateCache = cache.NewMemoryCache()
	suite.service = services.NewStatusService(suite.mockRepo, suite.mockFetcher, suite.mockUpdater, suite.mockIntegrity, suite.rateCache, time.Hour)
}

func (suite *StatusServiceTestSuite) TestGetUpdateStatistics() {
	ctx := context.Background()
	rows := []domain.Currency{
		{ID: 1, Code: "USD", IsDefault: true, ExchangeRate: decimal.NewFromInt(1)},
		{ID: 2, Code: "EUR", ExchangeRate: decimal.NewFromFloat(0.92), LastUpdated: timePtr(time.Now().Add(-30 * time.Minute))},
		{ID: 3, Code: "GBP", ExchangeRate: decimal.NewFromFloat(0.79), LastUpdated: timePtr(time.Now().Add(-48 * time.Hour))},
		{ID: 4, Code: "JPY", ExchangeRate: decimal.Zero},
	}

	suite.mockRepo.On("ListCurrencies", ctx).Return(rows, nil).Once()
	suite.mockUpdater.On("RatesNeedUpdate", ctx).Return(false, nil).Once()

	stats, err := suite.service.GetUpdateStatistics(ctx)

	suite.Require().NoError(err)
	suite.Equal(4, stats.TotalCurrencies)
	suite.Equal(3, stats.WithPositiveRate)
	suite.Equal("USD", stats.DefaultCurrency)
	suite.Equal(1, stats.NeverUpdated)
	suite.Equal(1, stats.UpdatedOver24hAgo)
	suite.False(stats.NeedsUpdate)
	suite.Require().NotNil(stats.MostRecentUpdate)
	suite.WithinDuration(time.Now().Add(-30*time.Minute), *stats.MostRecentUpdate, time.Minute)
}

func (suite *StatusServiceTestSuite) TestMonitorAPIHealth() {
	ctx := context.Background()
	samples := []dto.EndpointHealth{
		{Endpoint: "https://mirror-a", Status: dto.EndpointStatusHealthy, ResponseTimeMS: 42},
		{Endpoint: "https://mirror-b", Status: dto.EndpointStatusFailed, Error: "connection refused"},
	}

	suite.mockFetcher.On("CheckEndpointHealth", ctx).Return(samples).Once()

	suite.Equal(samples, suite.service.MonitorAPIHealth(ctx))
	suite.mockFetcher.AssertExpectations(suite.T())
}

func (suite *StatusServiceTestSuite) TestGenerateStatusReport() {
	ctx := context.Background()
	rows := []domain.Currency{
		{ID: 1, Code: "USD", IsDefault: true, ExchangeRate: decimal.NewFromInt(1)},
		{ID: 2, Code: "EUR", ExchangeRate: decimal.NewFromFloat(0.92), LastUpdated: timePtr(time.Now().Add(-10 * time.Minute))},
	}
	health := []dto.EndpointHealth{{Endpoint: "https://mirror-a", Status: dto.EndpointStatusHealthy}}
	integrity := &dto.IntegrityReport{Status: dto.IntegrityStatusHealthy, IssuesFound: []string{}, FixesApplied: []string{}}

	suite.rateCache.Set(ctx, cache.CurrencyListKey, []byte(`{"usd":"US Dollar"}`), time.Hour)

	suite.mockRepo.On("ListCurrencies", ctx).Return(rows, nil).Once()
	suite.mockUpdater.On("RatesNeedUpdate", ctx).Return(false, nil).Once()
	suite.mockIntegrity.On("ValidateCurrencyIntegrity", ctx).Return(integrity, nil).Once()
	suite.mockFetcher.On("CheckEndpointHealth", ctx).Return(health).Once()

	report, err := suite.service.GenerateStatusReport(ctx)

	suite.Require().NoError(err)
	suite.Equal(health, report.APIHealth)
	suite.Equal(*integrity, report.Integrity)
	suite.Equal("memory", report.Cache.Driver)
	suite.Equal(1.0, report.Cache.TTLHours)
	suite.True(report.Cache.HasCurrencyList)
	suite.WithinDuration(time.Now(), report.GeneratedAt, time.Minute)
}

func (suite *StatusServiceTestSuite) TestGenerateStatusReport_IntegrityError() {
	ctx := context.Background()
	rows := []domain.Currency{{ID: 1, Code: "USD", IsDefault: true, ExchangeRate: decimal.NewFromInt(1)}}

	suite.mockRepo.On("ListCurrencies", ctx).Return(rows, nil).Once()
	suite.mockUpdater.On("RatesNeedUpdate", ctx).Return(true, nil).Once()
	suite.mockIntegrity.On("ValidateCurrencyIntegrity", ctx).Return(nil, context.DeadlineExceeded).Once()

	report, err := suite.service.GenerateStatusReport(ctx)

	suite.Require().Error(err)
	suite.Nil(report)
}

func TestStatusServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatusServiceTestSuite))
}
