package services_test

import (
	"context"
	"testing"

	"github.com/finbook/currency_sync/internal/apperrors"
	"github.com/finbook/currency_sync/internal/core/domain"
	"github.com/finbook/currency_sync/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserSettingsServiceTestSuite struct {
	suite.Suite
	mockSettings *MockUserSettingsRepository
	mockRepo     *MockCurrencyRepository
	service      *services.UserSettingsService
}

func (suite *UserSettingsServiceTestSuite) SetupTest() {
	suite.mockSettings = new(MockUserSettingsRepository)
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewUserSettingsService(suite.mockSettings, suite.mockRepo)
}

func (suite *UserSettingsServiceTestSuite) TestGetUserCurrency_Success() {
	ctx := context.Background()

	suite.mockSettings.On("FindUserCurrencyCode", ctx, "user-1").Return("EUR", nil).Once()

	code, err := suite.service.GetUserCurrency(ctx, "user-1")

	suite.Require().NoError(err)
	suite.Equal("EUR", code)
}

func (suite *UserSettingsServiceTestSuite) TestGetUserCurrency_NotFound() {
	ctx := context.Background()

	suite.mockSettings.On("FindUserCurrencyCode", ctx, "user-2").Return("", apperrors.ErrNotFound).Once()

	_, err := suite.service.GetUserCurrency(ctx, "user-2")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserSettingsServiceTestSuite) TestGetUserCurrency_EmptyUserID() {
	_, err := suite.service.GetUserCurrency(context.Background(), "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSettings.AssertNotCalled(suite.T(), "FindUserCurrencyCode", mock.Anything, mock.Anything)
}

func (suite *UserSettingsServiceTestSuite) TestSetUserCurrency_Success() {
	ctx := context.Background()
	eur := &domain.Currency{ID: 2, Code: "EUR"}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()
	suite.mockSettings.On("SaveUserCurrencyCode", ctx, "user-1", "EUR").Return(nil).Once()

	err := suite.service.SetUserCurrency(ctx, "user-1", "eur")

	suite.Require().NoError(err)
	suite.mockSettings.AssertExpectations(suite.T())
}

func (suite *UserSettingsServiceTestSuite) TestSetUserCurrency_UnknownCurrency() {
	ctx := context.Background()

	suite.mockRepo.On("FindCurrencyByCode", ctx, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.SetUserCurrency(ctx, "user-1", "XXX")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSettings.AssertNotCalled(suite.T(), "SaveUserCurrencyCode", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserSettingsServiceTestSuite) TestSetUserCurrency_SaveError() {
	ctx := context.Background()
	eur := &domain.Currency{ID: 2, Code: "EUR"}
	expectedErr := assert.AnError

	suite.mockRepo.On("FindCurrencyByCode", ctx, "EUR").Return(eur, nil).Once()
	suite.mockSettings.On("SaveUserCurrencyCode", ctx, "user-1", "EUR").Return(expectedErr).Once()

	err := suite.service.SetUserCurrency(ctx, "user-1", "EUR")

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
}

func TestUserSettingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserSettingsServiceTestSuite))
}
