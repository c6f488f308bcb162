package services_test

import (
	"context"
	"testing"

	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/apperrors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/domain"
	portssvc "github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/ports/services"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/processors"
	"github.com/siavashbesharati-jpg/Exchange-APP-sub002/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	service  portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockRepo)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	input := domain.Currency{CurrencyCode: "usdt", Symbol: "T", Name: "Tether", Precision: 2}

	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "USDT" && c.CreatedBy == "op1" && c.LastUpdatedBy == "op1"
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, input, "op1")

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal("USDT", currency.CurrencyCode, "code is normalized before saving")
	suite.Equal(2, currency.Precision)
	suite.False(currency.CreatedAt.IsZero())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_BadCode() {
	ctx := context.Background()
	input := domain.Currency{CurrencyCode: "US", Symbol: "$", Name: "Broken"}

	currency, err := suite.service.CreateCurrency(ctx, input, "op1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, processors.ErrBadCurrencyCode)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_NegativePrecision() {
	ctx := context.Background()
	input := domain.Currency{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Precision: -1}

	_, err := suite.service.CreateCurrency(ctx, input, "op1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SaveError() {
	ctx := context.Background()
	input := domain.Currency{CurrencyCode: "EUR", Symbol: "E", Name: "Euro"}
	expectedErr := assert.AnError

	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(expectedErr).Once()

	currency, err := suite.service.CreateCurrency(ctx, input, "op1")

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, expectedErr)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_Success() {
	ctx := context.Background()
	expected := &domain.Currency{CurrencyCode: "USD"}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(expected, nil).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "USD")

	suite.Require().NoError(err)
	suite.Equal(expected, currency)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_RejectsMalformedCode() {
	_, err := suite.service.GetCurrencyByCode(context.Background(), "not a code")

	suite.Require().Error(err)
	suite.ErrorIs(err, processors.ErrBadCurrencyCode)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies() {
	ctx := context.Background()
	expected := []domain.Currency{{CurrencyCode: "USD"}, {CurrencyCode: "IRR"}}

	suite.mockRepo.On("ListCurrencies", ctx).Return(expected, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.Equal(expected, currencies)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
