package services_test

import (
	"context"
	"testing"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/domain"
	portssvc "github.com/finbook/currency_sync/internal/core/ports/services"
	"github.com/finbook/currency_sync/internal/core/services"
	"github.com/finbook/currency_sync/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockCurrencyRepository
	mockFetcher *MockRateFetcher
	service     portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.mockFetcher = new(MockRateFetcher)
	suite.service = services.NewCurrencyService(suite.mockRepo, suite.mockFetcher)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	creatorUserID := "admin-1"
	req := dto.CreateCurrencyRequest{
		Code:         "CHF",
		Name:         "Swiss Franc",
		Symbol:       "Fr",
		ExchangeRate: decimal.NewFromFloat(0.88),
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CHF").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Code == req.Code && c.Symbol == req.Symbol && c.Name == req.Name && c.CreatedBy == creatorUserID && c.LastUpdatedBy == creatorUserID
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal(req.Code, currency.Code)
	suite.Equal(req.Symbol, currency.Symbol)
	suite.Equal(creatorUserID, currency.CreatedBy)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NonPositiveRate() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{
		Code:         "CHF",
		Name:         "Swiss Franc",
		Symbol:       "Fr",
		ExchangeRate: decimal.Zero,
	}

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(currency)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_DefaultMayHaveAnyRate() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{
		Code:      "USD",
		Name:      "US Dollar",
		Symbol:    "$",
		IsDefault: true,
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().NoError(err)
	suite.True(currency.IsDefault)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()
	existing := &domain.Currency{ID: 7, Code: "CHF"}
	req := dto.CreateCurrencyRequest{
		Code:         "CHF",
		Name:         "Swiss Franc",
		Symbol:       "Fr",
		ExchangeRate: decimal.NewFromFloat(0.88),
	}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CHF").Return(existing, nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(currency)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SaveError() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{
		Code:         "CHF",
		Name:         "Swiss Franc",
		Symbol:       "Fr",
		ExchangeRate: decimal.NewFromFloat(0.88),
	}
	expectedErr := assert.AnError

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CHF").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(expectedErr).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "admin-1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_Success() {
	ctx := context.Background()
	expectedCurrency := &domain.Currency{ID: 2, Code: "EUR"}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "EUR").Return(expectedCurrency, nil).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "eur")

	suite.Require().NoError(err)
	suite.Equal(expectedCurrency, currency)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_InvalidLength() {
	currency, err := suite.service.GetCurrencyByCode(context.Background(), "EURO")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(currency)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_NilBecomesEmpty() {
	ctx := context.Background()

	suite.mockRepo.On("ListCurrencies", ctx).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
}

func (suite *CurrencyServiceTestSuite) TestListAvailableCurrencies() {
	ctx := context.Background()
	names := map[string]string{"usd": "US Dollar", "eur": "Euro"}

	suite.mockFetcher.On("FetchAvailableCurrencies", ctx).Return(names, nil).Once()

	available, err := suite.service.ListAvailableCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Equal(names, available)
	suite.mockFetcher.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestListAvailableCurrencies_SourceExhausted() {
	ctx := context.Background()

	suite.mockFetcher.On("FetchAvailableCurrencies", ctx).Return(nil, apperrors.ErrRateSourceExhausted).Once()

	available, err := suite.service.ListAvailableCurrencies(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateSourceExhausted)
	suite.Nil(available)
}

func (suite *CurrencyServiceTestSuite) TestSeedDefaultCurrencies_EmptyStore() {
	ctx := context.Background()

	suite.mockRepo.On("CountCurrencies", ctx).Return(int64(0), nil).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Code == "USD" && c.IsDefault && c.ExchangeRate.Equal(decimal.NewFromInt(1)) && c.LastUpdated == nil
	})).Return(nil).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Code == "EUR" && !c.IsDefault
	})).Return(nil).Once()
	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.Code == "GBP" && !c.IsDefault
	})).Return(nil).Once()

	seeded, err := suite.service.SeedDefaultCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Equal([]string{"USD", "EUR", "GBP"}, seeded)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestSeedDefaultCurrencies_PopulatedStoreIsNoOp() {
	ctx := context.Background()

	suite.mockRepo.On("CountCurrencies", ctx).Return(int64(3), nil).Once()

	seeded, err := suite.service.SeedDefaultCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Empty(seeded)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
