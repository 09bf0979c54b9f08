package upi_test

import (
	"context"
	"errors"
	"sync"

	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/upi"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestSubmitWithinBudget() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 500)

	expense, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID:     user.ID,
		CategoryID: food.ID,
		Amount:     decimal.NewFromInt(500),
		IsUPI:      true,
	})
	suite.Require().Nil(err)

	suite.Assert().False(expense.CausedOverflow)
	suite.Assert().Nil(expense.OverflowCategoryID)
	suite.Assert().Equal("Food", expense.Category.Name)
	suite.Assert().True(now.Equal(expense.Date), "Date defaults to now")
	suite.Assert().True(decimal.NewFromInt(500).Equal(suite.spent(user, food)))
}

func (suite *TestSuiteStandard) TestSubmitOverBudgetBlocks() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 500)

	_, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(400), IsUPI: true,
	})
	suite.Require().Nil(err)

	_, err = suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(150), IsUPI: true,
	})
	suite.Require().ErrorIs(err, upi.ErrBudgetExceeded)

	var rejection *upi.Rejection
	suite.Require().True(errors.As(err, &rejection))
	suite.Assert().True(rejection.NowBlocked)
	suite.Assert().Equal("Food", rejection.Category)
	suite.Assert().True(decimal.NewFromInt(550).Equal(rejection.Projected))
	suite.Assert().Contains(err.Error(), "INR 550.00 of INR 500.00")

	suite.Assert().True(suite.reload(user).UPICurrentlyBlocked, "Block flag must be committed")
	suite.Assert().True(decimal.NewFromInt(400).Equal(suite.spent(user, food)), "Rejected expense must not be recorded")

	// Further UPI payments are blocked, even small ones
	_, err = suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(1), IsUPI: true,
	})
	suite.Assert().ErrorIs(err, upi.ErrBlocked)
}

func (suite *TestSuiteStandard) TestSubmitOverBudgetWithoutAutoBlock() {
	user := suite.createTestUser(func(u *models.User) { u.UPIBlockEnabled = false })
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 100)

	_, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(101), IsUPI: true,
	})

	var rejection *upi.Rejection
	suite.Require().True(errors.As(err, &rejection))
	suite.Assert().ErrorIs(err, upi.ErrBudgetExceeded)
	suite.Assert().False(rejection.NowBlocked)
	suite.Assert().False(suite.reload(user).UPICurrentlyBlocked)
}

func (suite *TestSuiteStandard) TestSubmitSpendingLimitsDisabled() {
	user := suite.createTestUser(func(u *models.User) { u.UPISpendingLimits = false })
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 100)

	expense, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(250), IsUPI: true,
	})
	suite.Require().Nil(err)
	suite.Assert().True(expense.CausedOverflow)
	suite.Assert().False(suite.reload(user).UPICurrentlyBlocked)
}

func (suite *TestSuiteStandard) TestSubmitNonUPIOverflow() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 100)

	expense, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.RequireFromString("100.01"),
	})
	suite.Require().Nil(err)

	suite.Assert().True(expense.CausedOverflow)
	suite.Require().NotNil(expense.OverflowCategoryID)
	suite.Assert().Equal(food.ID, *expense.OverflowCategoryID)
	suite.Assert().False(suite.reload(user).UPICurrentlyBlocked, "Non-UPI expenses never block")
}

func (suite *TestSuiteStandard) TestSubmitNonUPIWhileBlocked() {
	user := suite.createTestUser(func(u *models.User) { u.UPICurrentlyBlocked = true })
	food := suite.category(user, "Food")

	_, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(10),
	})
	suite.Assert().Nil(err)
}

func (suite *TestSuiteStandard) TestSubmitWithoutBudget() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	transport := suite.category(user, "Transport")
	suite.createTestBudget(user, food, 100)

	expense, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: transport.ID, Amount: decimal.NewFromInt(1000), IsUPI: true,
	})
	suite.Assert().Nil(err, "Categories without allocation are not checked")
	suite.Assert().False(expense.CausedOverflow)

	// Expenses in a month without budget are never checked
	expense, err = suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(1000), IsUPI: true,
		Date: now.AddDate(0, 1, 0),
	})
	suite.Assert().Nil(err)
	suite.Assert().False(expense.CausedOverflow)
}

func (suite *TestSuiteStandard) TestSubmitErrors() {
	user := suite.createTestUser(nil)
	other := suite.createTestUser(nil)
	food := suite.category(user, "Food")

	_, err := suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: user.ID, CategoryID: food.ID, Amount: decimal.Zero, IsUPI: true,
	})
	suite.Assert().ErrorIs(err, models.ErrAmountNotPositive)

	_, err = suite.gate.Submit(context.Background(), models.DB, models.Expense{
		UserID: other.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(1),
	})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound, "Categories of other users must not be usable")
}

func (suite *TestSuiteStandard) TestPayDebitsBank() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	_, err := models.ConnectBankAccount(models.DB, user.ID, "XXXX1234", decimal.NewFromInt(1000), now)
	suite.Require().Nil(err)

	payment, err := suite.gate.Pay(context.Background(), models.DB, user.ID, food.ID, decimal.RequireFromString("120.50"), "Lunch")
	suite.Require().Nil(err)

	suite.Require().NotNil(payment.BankBalance)
	suite.Assert().True(decimal.RequireFromString("879.50").Equal(*payment.BankBalance))
	suite.Assert().True(payment.Expense.IsUPI)
	suite.Assert().Equal("Lunch", payment.Expense.Note)

	reloaded := suite.reload(user)
	suite.Assert().True(decimal.RequireFromString("879.50").Equal(reloaded.BankBalance), "Balance is mirrored on the user")
}

func (suite *TestSuiteStandard) TestPayWithoutBank() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")

	payment, err := suite.gate.Pay(context.Background(), models.DB, user.ID, food.ID, decimal.NewFromInt(50), "")
	suite.Require().Nil(err)
	suite.Assert().Nil(payment.BankBalance)
}

func (suite *TestSuiteStandard) TestPayInsufficientFunds() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	_, err := models.ConnectBankAccount(models.DB, user.ID, "XXXX1234", decimal.NewFromInt(100), now)
	suite.Require().Nil(err)

	_, err = suite.gate.Pay(context.Background(), models.DB, user.ID, food.ID, decimal.NewFromInt(150), "")
	suite.Require().ErrorIs(err, upi.ErrInsufficientFunds)

	account, err := models.FindBankAccount(models.DB, user.ID)
	suite.Require().Nil(err)
	suite.Assert().True(decimal.NewFromInt(100).Equal(account.Balance))
	suite.Assert().True(suite.spent(user, food).IsZero())
	suite.Assert().False(suite.reload(user).UPICurrentlyBlocked)
}

func (suite *TestSuiteStandard) TestPayBudgetCheckedBeforeFunds() {
	user := suite.createTestUser(nil)
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 100)
	_, err := models.ConnectBankAccount(models.DB, user.ID, "XXXX1234", decimal.NewFromInt(50), now)
	suite.Require().Nil(err)

	_, err = suite.gate.Pay(context.Background(), models.DB, user.ID, food.ID, decimal.NewFromInt(150), "")
	suite.Assert().ErrorIs(err, upi.ErrBudgetExceeded)
	suite.Assert().True(suite.reload(user).UPICurrentlyBlocked)
}

// Concurrent payments must never overspend a category together.
func (suite *TestSuiteStandard) TestPayConcurrent() {
	user := suite.createTestUser(func(u *models.User) { u.UPIBlockEnabled = false })
	food := suite.category(user, "Food")
	suite.createTestBudget(user, food, 500)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.gate.Pay(context.Background(), models.DB, user.ID, food.ID, decimal.NewFromInt(100), "")
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Assert().Equal(5, accepted)
	suite.Assert().True(decimal.NewFromInt(500).Equal(suite.spent(user, food)))
}
