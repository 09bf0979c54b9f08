package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategorySummary is an allocation with the spend of its category in the budget month.
type CategorySummary struct {
	ID         uuid.UUID       `json:"id"`
	BudgetID   uuid.UUID       `json:"budgetId"`
	CategoryID uuid.UUID       `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount" example:"800"`
	Category   Category        `json:"category"`
	Spent      decimal.Decimal `json:"spent" example:"950"`
	OverBudget bool            `json:"overBudget" example:"true"`
	Overflow   decimal.Decimal `json:"overflow" example:"150"` // Spent minus allocation. Negative while under budget.
}

// BudgetSummary is a budget with all figures derived from the expenses of its month.
type BudgetSummary struct {
	Budget
	Categories  []CategorySummary `json:"categories"`
	Spent       decimal.Decimal   `json:"spent" example:"1200"`
	Remaining   decimal.Decimal   `json:"remaining" example:"1800"`
	DaysLeft    int               `json:"daysLeft" example:"12"`
	DailyBudget decimal.Decimal   `json:"dailyBudget" example:"150"`
	BankBalance *decimal.Decimal  `json:"bankBalance" example:"4200"` // nil without a connected bank account
	HasOverflow bool              `json:"hasOverflow" example:"false"`
	UPIBlocked  bool              `json:"upiBlocked" example:"false"`
}

// Summary computes the budget summary. now decides the days left in the month.
func (b Budget) Summary(db *gorm.DB, now time.Time) (BudgetSummary, error) {
	allocations, err := b.Allocations(db)
	if err != nil {
		return BudgetSummary{}, err
	}

	spending, err := CategorySpending(db, b.UserID, b.Period())
	if err != nil {
		return BudgetSummary{}, err
	}

	var user User
	err = db.First(&user, "id = ?", b.UserID).Error
	if err != nil {
		return BudgetSummary{}, err
	}

	summary := BudgetSummary{
		Budget:     b,
		Categories: make([]CategorySummary, 0, len(allocations)),
		UPIBlocked: user.UPICurrentlyBlocked,
	}

	for _, a := range allocations {
		spent := spending[a.CategoryID]
		c := CategorySummary{
			ID:         a.ID,
			BudgetID:   a.BudgetID,
			CategoryID: a.CategoryID,
			Amount:     a.Amount,
			Category:   a.Category,
			Spent:      spent,
			OverBudget: spent.GreaterThan(a.Amount),
			Overflow:   spent.Sub(a.Amount),
		}

		summary.Spent = summary.Spent.Add(spent)
		summary.HasOverflow = summary.HasOverflow || c.OverBudget
		summary.Categories = append(summary.Categories, c)
	}

	summary.Remaining = b.TotalAmount.Sub(summary.Spent)
	summary.DaysLeft = b.Period().DaysLeft(now)
	if summary.DaysLeft > 0 {
		summary.DailyBudget = summary.Remaining.Div(decimal.NewFromInt(int64(summary.DaysLeft)))
	}

	account, err := FindBankAccount(db, b.UserID)
	if err == nil {
		summary.BankBalance = &account.Balance
	} else if !errors.Is(err, ErrResourceNotFound) {
		return BudgetSummary{}, err
	}

	return summary, nil
}
