package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is the monthly budget of a user.
//
// There is no uniqueness constraint on the period. When a user has several
// budgets for the same month, the earliest one is used.
type Budget struct {
	DefaultModel
	User        User            `json:"-"`
	UserID      uuid.UUID       `json:"userId" gorm:"index:idx_budget_period"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:DECIMAL(20,8)" example:"3000"`
	Month       int             `json:"month" gorm:"index:idx_budget_period" minimum:"1" maximum:"12" example:"6"`
	Year        int             `json:"year" gorm:"index:idx_budget_period" example:"2024"`
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	if b.TotalAmount.IsNegative() {
		return ErrNegativeAmount
	}

	_, err := types.ParseMonth(b.Month, b.Year)
	return err
}

// Period returns the month the budget covers.
func (b Budget) Period() types.Month {
	return types.NewMonth(b.Year, time.Month(b.Month))
}

// BudgetCategory allocates a part of a budget to a category.
type BudgetCategory struct {
	DefaultModel
	Budget     Budget          `json:"-"`
	BudgetID   uuid.UUID       `json:"budgetId" gorm:"uniqueIndex:idx_budget_category"`
	Category   Category        `json:"-"`
	CategoryID uuid.UUID       `json:"categoryId" gorm:"uniqueIndex:idx_budget_category"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"800"`
}

func (a *BudgetCategory) BeforeSave(_ *gorm.DB) error {
	if a.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// FindBudget returns the budget of a user for a month.
func FindBudget(db *gorm.DB, userID uuid.UUID, month types.Month) (Budget, error) {
	var budget Budget
	err := db.
		Where("user_id = ? AND month = ? AND year = ?", userID, int(month.Month()), month.Year()).
		Order("created_at ASC").
		First(&budget).Error
	if errors.Is(err, ErrResourceNotFound) {
		return Budget{}, fmt.Errorf("%w budget for %s", ErrResourceNotFound, month)
	}

	return budget, err
}

// CreateBudget creates a budget and its allocations in one transaction.
// Every allocated category must belong to the budget's user.
func CreateBudget(db *gorm.DB, budget *Budget, allocations []BudgetCategory) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, a := range allocations {
			if _, err := FindCategory(tx, budget.UserID, a.CategoryID); err != nil {
				return err
			}
		}

		if err := tx.Create(budget).Error; err != nil {
			return err
		}

		for i := range allocations {
			allocations[i].BudgetID = budget.ID
		}

		if len(allocations) == 0 {
			return nil
		}
		return tx.Create(&allocations).Error
	})
}

// SetAllocation creates or updates the allocation of a category in a budget.
func SetAllocation(db *gorm.DB, budget Budget, categoryID uuid.UUID, amount decimal.Decimal) (BudgetCategory, error) {
	var allocation BudgetCategory

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindCategory(tx, budget.UserID, categoryID); err != nil {
			return err
		}

		err := tx.Where(BudgetCategory{BudgetID: budget.ID, CategoryID: categoryID}).First(&allocation).Error
		if errors.Is(err, ErrResourceNotFound) {
			allocation = BudgetCategory{BudgetID: budget.ID, CategoryID: categoryID, Amount: amount}
			return tx.Create(&allocation).Error
		} else if err != nil {
			return err
		}

		allocation.Amount = amount
		return tx.Model(&allocation).Update("amount", amount).Error
	})

	return allocation, err
}

// Allocations returns the allocations of the budget with their categories.
func (b Budget) Allocations(db *gorm.DB) ([]BudgetCategory, error) {
	var allocations []BudgetCategory
	err := db.
		Preload("Category").
		Where(&BudgetCategory{BudgetID: b.ID}).
		Order("created_at ASC").
		Find(&allocations).Error
	return allocations, err
}
