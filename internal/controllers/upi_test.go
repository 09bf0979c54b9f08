package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBlockUPI() {
	session := suite.register("asha")

	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/upi/block", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var user models.User
	test.DecodeResponse(suite.T(), &r, &user)
	suite.Assert().True(user.UPICurrentlyBlocked)

	food := suite.category(session, "Food")
	r = suite.pay(session, food, 10)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)

	var rejection controllers.Rejection
	test.DecodeResponse(suite.T(), &r, &rejection)
	suite.Assert().Equal("BLOCKED", rejection.Status)
	suite.Assert().True(rejection.UPIBlocked)

	r = test.Request(suite.T(), http.MethodPost, baseURL+"/api/upi/unblock", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &user)
	suite.Assert().False(user.UPICurrentlyBlocked)

	r = suite.pay(session, food, 10)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
}

func (suite *TestSuiteStandard) TestUPITransaction() {
	session := suite.register("asha")
	suite.connectBank(session)
	food := suite.category(session, "Food")

	r := suite.pay(session, food, 250)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var receipt controllers.UPIReceipt
	test.DecodeResponse(suite.T(), &r, &receipt)
	suite.Assert().Equal("SUCCESS", receipt.Status)
	suite.Assert().Equal("UPI"+receipt.Expense.ID.String(), receipt.TransactionID)
	suite.Assert().Equal("UPI Transaction", receipt.Expense.Note)
	suite.Assert().True(receipt.Expense.IsUPI)
	suite.Assert().Equal(food.ID, receipt.Expense.CategoryID)
	suite.equal(250, receipt.Expense.Amount)
	suite.Require().NotNil(receipt.BankBalance)
	suite.equal(4750, *receipt.BankBalance)

	suite.equal(4750, suite.user(session).BankBalance)

	r = test.Request(suite.T(), http.MethodGet, baseURL+"/api/expenses", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var expenses []models.Expense
	test.DecodeResponse(suite.T(), &r, &expenses)
	suite.Require().Len(expenses, 1)
	suite.Assert().Equal(receipt.Expense.ID, expenses[0].ID)
}

func (suite *TestSuiteStandard) TestUPITransactionNote() {
	session := suite.register("asha")
	food := suite.category(session, "Food")

	r := test.Request(suite.T(), http.MethodPost, baseURL+"/api/upi/transaction", controllers.UPITransaction{
		Amount:     decimal.NewFromInt(120),
		CategoryID: food.ID,
		Note:       "  Samosas ",
	}, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var receipt controllers.UPIReceipt
	test.DecodeResponse(suite.T(), &r, &receipt)
	suite.Assert().Equal("Samosas", receipt.Expense.Note)
}

func (suite *TestSuiteStandard) TestUPITransactionWithoutBank() {
	session := suite.register("asha")
	food := suite.category(session, "Food")

	r := suite.pay(session, food, 250)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	suite.Assert().Contains(r.Body.String(), `"bankBalance":null`)

	var receipt controllers.UPIReceipt
	test.DecodeResponse(suite.T(), &r, &receipt)
	suite.Assert().Nil(receipt.BankBalance)
}

func (suite *TestSuiteStandard) TestUPITransactionInsufficientFunds() {
	session := suite.register("asha")
	suite.connectBank(session)
	food := suite.category(session, "Food")

	r := suite.pay(session, food, 5001)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var rejection controllers.Rejection
	test.DecodeResponse(suite.T(), &r, &rejection)
	suite.Assert().Equal("FAILED", rejection.Status)
	suite.Assert().True(rejection.InsufficientFunds)
	suite.Assert().False(rejection.BudgetExceeded)

	suite.equal(5000, suite.user(session).BankBalance)

	r = test.Request(suite.T(), http.MethodGet, baseURL+"/api/expenses", nil, session)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	suite.Assert().JSONEq("[]", r.Body.String())

	// The whole balance can be spent
	r = suite.pay(session, food, 5000)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	suite.equal(0, suite.user(session).BankBalance)
}

func (suite *TestSuiteStandard) TestUPITransactionOverBudget() {
	session := suite.register("asha")
	suite.connectBank(session)
	food := suite.category(session, "Food")
	transport := suite.category(session, "Transport")
	suite.createBudget(session, food, 800)

	r := suite.pay(session, food, 600)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = suite.pay(session, food, 250)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var rejection controllers.Rejection
	test.DecodeResponse(suite.T(), &r, &rejection)
	suite.Assert().Equal("BLOCKED", rejection.Status)
	suite.Assert().True(rejection.BudgetExceeded)
	suite.Assert().True(rejection.NowBlocked)
	suite.Assert().True(strings.HasPrefix(rejection.Message, "UPI transaction rejected."), rejection.Message)

	// Nothing is debited for the rejected payment
	suite.equal(4400, suite.user(session).BankBalance)
	suite.Assert().True(suite.user(session).UPICurrentlyBlocked)

	// Every UPI payment is refused while blocked
	r = suite.pay(session, transport, 10)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusForbidden)
}

func (suite *TestSuiteStandard) TestUPITransactionBudgetExact() {
	session := suite.register("asha")
	food := suite.category(session, "Food")
	suite.createBudget(session, food, 800)

	r := suite.pay(session, food, 800)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	suite.Assert().False(suite.user(session).UPICurrentlyBlocked)
}

func (suite *TestSuiteStandard) TestUPITransactionInvalid() {
	session := suite.register("asha")
	food := suite.category(session, "Food")

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Zero amount", `{"amount": 0, "categoryId": "` + food.ID.String() + `"}`, http.StatusBadRequest},
		{"Negative amount", `{"amount": -5, "categoryId": "` + food.ID.String() + `"}`, http.StatusBadRequest},
		{"Amount is a string", `{"amount": "5", "categoryId": "` + food.ID.String() + `"}`, http.StatusBadRequest},
		{"No category", `{"amount": 5}`, http.StatusBadRequest},
		{"Unknown category", `{"amount": 5, "categoryId": "7f2b3f11-6d2e-4a4f-9e3c-1b6f7f0f2a11"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, baseURL+"/api/upi/transaction", tt.body, session)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}
