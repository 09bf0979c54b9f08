package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is an entry in the ledger. Expenses are never updated or deleted.
type Expense struct {
	DefaultModel
	User               User            `json:"-"`
	UserID             uuid.UUID       `json:"userId" gorm:"index"`
	Category           Category        `json:"category"`
	CategoryID         uuid.UUID       `json:"categoryId" gorm:"index"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"120.50"`
	Date               time.Time       `json:"date" gorm:"index" example:"2024-06-12T09:30:00Z"`
	Note               string          `json:"note" example:"Lunch with friends"`
	IsUPI              bool            `json:"isUPI" gorm:"column:is_upi" example:"false"`
	CausedOverflow     bool            `json:"causedOverflow" example:"false"` // The expense took its category over the allocation
	OverflowCategoryID *uuid.UUID      `json:"overflowCategoryId"`
}

func (e *Expense) BeforeSave(_ *gorm.DB) error {
	if !e.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	trim(&e.Note)
	e.Date = e.Date.UTC()
	return nil
}

func (e *Expense) AfterFind(tx *gorm.DB) error {
	e.Date = e.Date.In(time.UTC)
	return e.DefaultModel.AfterFind(tx)
}

// ExpenseFilter selects expenses of one user.
type ExpenseFilter struct {
	UserID     uuid.UUID
	CategoryID uuid.UUID   // optional
	Month      types.Month // optional
}

// Expenses returns the matching expenses, newest first.
func Expenses(db *gorm.DB, f ExpenseFilter) ([]Expense, error) {
	q := db.Preload("Category").Where("user_id = ?", f.UserID)

	if f.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", f.CategoryID)
	}

	if !time.Time(f.Month).IsZero() {
		q = q.Where("date >= ? AND date < ?", f.Month.Start(), f.Month.End())
	}

	var expenses []Expense
	err := q.Order("date DESC").Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

// CategorySpending sums the expenses of a user per category for a month.
func CategorySpending(db *gorm.DB, userID uuid.UUID, month types.Month) (map[uuid.UUID]decimal.Decimal, error) {
	var expenses []Expense
	err := db.
		Select("category_id", "amount").
		Where("user_id = ? AND date >= ? AND date < ?", userID, month.Start(), month.End()).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	spending := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range expenses {
		spending[e.CategoryID] = spending[e.CategoryID].Add(e.Amount)
	}

	return spending, nil
}
