package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) createTestBudget(user models.User, total int64, month types.Month, allocations map[uuid.UUID]int64) models.Budget {
	budget := models.Budget{
		UserID:      user.ID,
		TotalAmount: decimal.NewFromInt(total),
		Month:       int(month.Month()),
		Year:        month.Year(),
	}

	var bcs []models.BudgetCategory
	for categoryID, amount := range allocations {
		bcs = append(bcs, models.BudgetCategory{CategoryID: categoryID, Amount: decimal.NewFromInt(amount)})
	}

	suite.Require().Nil(models.CreateBudget(models.DB, &budget, bcs))
	return budget
}

func (suite *TestSuiteStandard) createTestExpense(user models.User, category models.Category, amount string, date time.Time) models.Expense {
	expense := models.Expense{
		UserID:     user.ID,
		CategoryID: category.ID,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	}
	suite.Require().Nil(models.DB.Create(&expense).Error)
	return expense
}

func (suite *TestSuiteStandard) TestFindBudgetNotFound() {
	user := suite.createTestUser()

	_, err := models.FindBudget(models.DB, user.ID, types.NewMonth(2024, time.June))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
	suite.Assert().Equal("there is no budget for 2024-06", err.Error())
}

func (suite *TestSuiteStandard) TestFindBudgetEarliestWins() {
	user := suite.createTestUser()
	month := types.NewMonth(2024, time.June)

	first := suite.createTestBudget(user, 1000, month, nil)
	_ = suite.createTestBudget(user, 2000, month, nil)

	found, err := models.FindBudget(models.DB, user.ID, month)
	suite.Require().Nil(err)
	suite.Assert().Equal(first.ID, found.ID)
}

func (suite *TestSuiteStandard) TestFindBudgetIsolatesUsers() {
	owner := suite.createTestUser()
	other := suite.createTestUser()
	month := types.NewMonth(2024, time.June)

	suite.createTestBudget(owner, 1000, month, nil)

	_, err := models.FindBudget(models.DB, other.ID, month)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestCreateBudgetValidation() {
	user := suite.createTestUser()
	other := suite.createTestUser()
	foreign := suite.categoryByName(other, "Food")

	tests := []struct {
		name        string
		budget      models.Budget
		allocations []models.BudgetCategory
		err         error
	}{
		{"Foreign category", models.Budget{UserID: user.ID, TotalAmount: decimal.NewFromInt(10), Month: 6, Year: 2024}, []models.BudgetCategory{{CategoryID: foreign.ID, Amount: decimal.NewFromInt(5)}}, models.ErrResourceNotFound},
		{"Month out of range", models.Budget{UserID: user.ID, TotalAmount: decimal.NewFromInt(10), Month: 13, Year: 2024}, nil, types.ErrInvalidMonth},
		{"Negative total", models.Budget{UserID: user.ID, TotalAmount: decimal.NewFromInt(-1), Month: 6, Year: 2024}, nil, models.ErrNegativeAmount},
		{"Negative allocation", models.Budget{UserID: user.ID, TotalAmount: decimal.NewFromInt(10), Month: 6, Year: 2024}, []models.BudgetCategory{{CategoryID: suite.categoryByName(user, "Food").ID, Amount: decimal.NewFromInt(-5)}}, models.ErrNegativeAmount},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			budget := tt.budget
			err := models.CreateBudget(models.DB, &budget, tt.allocations)
			suite.Assert().ErrorIs(err, tt.err)

			var count int64
			suite.Require().Nil(models.DB.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&count).Error)
			suite.Assert().Equal(int64(0), count, "failed creation must not leave a budget behind")
		})
	}
}

func (suite *TestSuiteStandard) TestSetAllocation() {
	user := suite.createTestUser()
	food := suite.categoryByName(user, "Food")
	budget := suite.createTestBudget(user, 1000, types.NewMonth(2024, time.June), nil)

	created, err := models.SetAllocation(models.DB, budget, food.ID, decimal.NewFromInt(300))
	suite.Require().Nil(err)
	suite.Assert().True(created.Amount.Equal(decimal.NewFromInt(300)))

	updated, err := models.SetAllocation(models.DB, budget, food.ID, decimal.NewFromInt(450))
	suite.Require().Nil(err)
	suite.Assert().Equal(created.ID, updated.ID)

	allocations, err := budget.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(allocations, 1)
	suite.Assert().True(allocations[0].Amount.Equal(decimal.NewFromInt(450)))
	suite.Assert().Equal("Food", allocations[0].Category.Name)
}

func (suite *TestSuiteStandard) TestAllocationUnique() {
	user := suite.createTestUser()
	food := suite.categoryByName(user, "Food")
	budget := suite.createTestBudget(user, 1000, types.NewMonth(2024, time.June), map[uuid.UUID]int64{food.ID: 100})

	err := models.DB.Create(&models.BudgetCategory{BudgetID: budget.ID, CategoryID: food.ID, Amount: decimal.NewFromInt(5)}).Error
	suite.Assert().ErrorIs(err, models.ErrAllocationNotUnique)
}

func (suite *TestSuiteStandard) TestBudgetSummary() {
	user := suite.createTestUser()
	food := suite.categoryByName(user, "Food")
	transport := suite.categoryByName(user, "Transport")
	shopping := suite.categoryByName(user, "Shopping")
	month := types.NewMonth(2024, time.June)

	budget := suite.createTestBudget(user, 3000, month, map[uuid.UUID]int64{
		food.ID:      1000,
		transport.ID: 500,
	})

	suite.createTestExpense(user, food, "600", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	suite.createTestExpense(user, food, "450.50", time.Date(2024, 6, 12, 18, 30, 0, 0, time.UTC))
	suite.createTestExpense(user, transport, "120", time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC))

	// Outside of the month or without allocation
	suite.createTestExpense(user, food, "999", time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC))
	suite.createTestExpense(user, food, "999", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	suite.createTestExpense(user, shopping, "50", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))

	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	summary, err := budget.Summary(models.DB, now)
	suite.Require().Nil(err)

	suite.Require().Len(summary.Categories, 2)
	byCategory := map[uuid.UUID]models.CategorySummary{}
	for _, c := range summary.Categories {
		byCategory[c.CategoryID] = c
	}

	f := byCategory[food.ID]
	suite.Assert().Equal("1050.5", f.Spent.String())
	suite.Assert().True(f.OverBudget)
	suite.Assert().Equal("50.5", f.Overflow.String())
	suite.Assert().Equal("Food", f.Category.Name)

	tr := byCategory[transport.ID]
	suite.Assert().Equal("120", tr.Spent.String())
	suite.Assert().False(tr.OverBudget)
	suite.Assert().Equal("-380", tr.Overflow.String())

	suite.Assert().Equal("1170.5", summary.Spent.String())
	suite.Assert().Equal("1829.5", summary.Remaining.String())
	suite.Assert().Equal(20, summary.DaysLeft)
	suite.Assert().True(summary.DailyBudget.Equal(summary.Remaining.Div(decimal.NewFromInt(20))))
	suite.Assert().True(summary.HasOverflow)
	suite.Assert().False(summary.UPIBlocked)
	suite.Assert().Nil(summary.BankBalance)
}

func (suite *TestSuiteStandard) TestBudgetSummaryOtherMonth() {
	user := suite.createTestUser()
	budget := suite.createTestBudget(user, 500, types.NewMonth(2024, time.May), nil)

	summary, err := budget.Summary(models.DB, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))
	suite.Require().Nil(err)

	suite.Assert().Equal(0, summary.DaysLeft)
	suite.Assert().True(summary.DailyBudget.IsZero())
	suite.Assert().True(summary.Remaining.Equal(decimal.NewFromInt(500)))
	suite.Assert().Empty(summary.Categories)
	suite.Assert().False(summary.HasOverflow)
}

func (suite *TestSuiteStandard) TestBudgetSummaryFlags() {
	user := suite.createTestUser()
	budget := suite.createTestBudget(user, 500, types.NewMonth(2024, time.June), nil)

	_, err := models.SetUPIBlocked(models.DB, user.ID, true)
	suite.Require().Nil(err)

	_, err = models.ConnectBankAccount(models.DB, user.ID, "XXXX0001", decimal.NewFromInt(5000), time.Now())
	suite.Require().Nil(err)

	summary, err := budget.Summary(models.DB, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))
	suite.Require().Nil(err)

	suite.Assert().True(summary.UPIBlocked)
	suite.Require().NotNil(summary.BankBalance)
	suite.Assert().Equal("5000", summary.BankBalance.String())
}
