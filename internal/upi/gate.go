// Package upi enforces category budgets on UPI payments.
//
// Every submission runs in one database transaction while holding a lock for
// its user, so two concurrent payments cannot both pass the budget check.
package upi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/money"
	"github.com/pocketguard/backend/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBlocked           = errors.New("UPI payments are currently blocked. Complete the financial quiz to unblock")
	ErrBudgetExceeded    = errors.New("UPI transaction rejected. You've exceeded your budget for this category")
	ErrInsufficientFunds = errors.New("UPI transaction failed. Your bank balance is too low for this payment")
)

// Rejection is returned when the gate refuses an expense. Nothing is written to
// the ledger for a rejected expense.
type Rejection struct {
	Err        error           // one of ErrBlocked, ErrBudgetExceeded, ErrInsufficientFunds
	Category   string          // name of the category
	Limit      decimal.Decimal // allocation or bank balance the payment was checked against
	Projected  decimal.Decimal // spend or debit the payment would have led to
	NowBlocked bool            // UPI was blocked because of this rejection
	message    string
}

func (r *Rejection) Error() string {
	return r.message
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Gate checks expenses before they are written to the ledger.
type Gate struct {
	locks  sync.Map // user ID → *sync.Mutex
	format money.Formatter
	now    func() time.Time
}

// NewGate returns a gate that formats amounts in rejection messages with f.
func NewGate(f money.Formatter) *Gate {
	return &Gate{format: f, now: time.Now}
}

// WithClock sets the clock used for the date of payments.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Submit validates and records an expense.
//
// UPI expenses are rejected when UPI is blocked for the user or when they would take their
// category over its allocation. In the latter case, UPI is blocked if the user enabled it.
// Other expenses are always recorded and only marked when they cause an overflow.
func (g *Gate) Submit(ctx context.Context, db *gorm.DB, expense models.Expense) (models.Expense, error) {
	if expense.Date.IsZero() {
		expense.Date = g.now()
	}

	err := g.run(ctx, db, expense.UserID, func(tx *gorm.DB, user models.User) error {
		return g.record(tx, user, &expense)
	})

	return expense, err
}

// Payment is a completed UPI payment.
type Payment struct {
	Expense     models.Expense
	BankBalance *decimal.Decimal // nil when no bank account is connected
}

// Pay records a UPI payment dated now and debits the connected bank account.
//
// A payment that would overdraw the bank account is rejected with ErrInsufficientFunds.
func (g *Gate) Pay(ctx context.Context, db *gorm.DB, userID, categoryID uuid.UUID, amount decimal.Decimal, note string) (Payment, error) {
	expense := models.Expense{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Date:       g.now(),
		Note:       note,
		IsUPI:      true,
	}

	var payment Payment
	err := g.run(ctx, db, userID, func(tx *gorm.DB, user models.User) error {
		account, err := models.FindBankAccount(tx, userID)
		connected := err == nil
		if err != nil && !errors.Is(err, models.ErrResourceNotFound) {
			return err
		}

		// Overspending blocks UPI even when the bank declines the payment
		if err := g.check(tx, user, &expense); err != nil {
			return err
		}

		if connected {
			balance := account.Balance.Sub(amount)
			if balance.IsNegative() {
				paymentsTotal.WithLabelValues(decisionInsufficientFunds).Inc()
				return &Rejection{
					Err:       ErrInsufficientFunds,
					Limit:     account.Balance,
					Projected: amount,
					message: fmt.Sprintf("%s (balance %s, payment %s).", ErrInsufficientFunds,
						g.format.Format(account.Balance), g.format.Format(amount)),
				}
			}

			account, err = models.SetBankBalance(tx, userID, balance, g.now())
			if err != nil {
				return err
			}
			payment.BankBalance = &account.Balance
		}

		if err := tx.Omit(clause.Associations).Create(&expense).Error; err != nil {
			return err
		}

		paymentsTotal.WithLabelValues(decisionAccepted).Inc()
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	payment.Expense = expense
	return payment, nil
}

// run executes fn in a transaction while holding the lock of the user.
//
// A *Rejection returned by fn does not roll back the transaction so that
// a UPI block caused by the rejection is persisted.
func (g *Gate) run(ctx context.Context, db *gorm.DB, userID uuid.UUID, fn func(*gorm.DB, models.User) error) error {
	mu, _ := g.locks.LoadOrStore(userID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	var rejection *Rejection
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := models.FindUserForUpdate(tx, userID)
		if err != nil {
			return err
		}

		err = fn(tx, user)
		if errors.As(err, &rejection) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}

	if rejection != nil {
		return rejection
	}
	return nil
}

// record checks an expense and writes it to the ledger.
func (g *Gate) record(tx *gorm.DB, user models.User, expense *models.Expense) error {
	if err := g.check(tx, user, expense); err != nil {
		return err
	}

	if err := tx.Omit(clause.Associations).Create(expense).Error; err != nil {
		return err
	}

	if expense.IsUPI {
		paymentsTotal.WithLabelValues(decisionAccepted).Inc()
	}
	return nil
}

// check applies the budget rules and sets the overflow fields of the expense.
func (g *Gate) check(tx *gorm.DB, user models.User, expense *models.Expense) error {
	if !expense.Amount.IsPositive() {
		return models.ErrAmountNotPositive
	}

	category, err := models.FindCategory(tx, user.ID, expense.CategoryID)
	if err != nil {
		return err
	}
	expense.Category = category

	if expense.IsUPI && user.UPICurrentlyBlocked {
		paymentsTotal.WithLabelValues(decisionBlocked).Inc()
		return &Rejection{Err: ErrBlocked, Category: category.Name, message: ErrBlocked.Error() + "."}
	}

	allocation, spent, ok, err := position(tx, user.ID, category.ID, types.MonthOf(expense.Date))
	if err != nil {
		return err
	}

	// Without a budget or allocation for the category, there is nothing to enforce
	if !ok {
		return nil
	}

	projected := spent.Add(expense.Amount)
	overflow := projected.GreaterThan(allocation)

	if expense.IsUPI && user.UPISpendingLimits && overflow {
		paymentsTotal.WithLabelValues(decisionBudgetExceeded).Inc()

		r := &Rejection{
			Err:       ErrBudgetExceeded,
			Category:  category.Name,
			Limit:     allocation,
			Projected: projected,
			message: fmt.Sprintf("%s (%s: %s of %s).", ErrBudgetExceeded, category.Name,
				g.format.Format(projected), g.format.Format(allocation)),
		}

		if user.UPIBlockEnabled {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("upi_currently_blocked", true).Error; err != nil {
				return err
			}
			r.NowBlocked = true
			autoBlocksTotal.Inc()
			log.Info().Str("user", user.ID.String()).Str("category", category.Name).Msg("UPI blocked after budget overflow")
		}

		return r
	}

	if overflow {
		expense.CausedOverflow = true
		expense.OverflowCategoryID = &category.ID
	}

	return nil
}

// position returns the allocation and current spend of a category in a month.
// ok is false when there is no budget for the month or no allocation for the category.
func position(tx *gorm.DB, userID, categoryID uuid.UUID, month types.Month) (allocation, spent decimal.Decimal, ok bool, err error) {
	budget, err := models.FindBudget(tx, userID, month)
	if errors.Is(err, models.ErrResourceNotFound) {
		return decimal.Zero, decimal.Zero, false, nil
	} else if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}

	var bc models.BudgetCategory
	err = tx.Where(&models.BudgetCategory{BudgetID: budget.ID, CategoryID: categoryID}).First(&bc).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		return decimal.Zero, decimal.Zero, false, nil
	} else if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}

	spending, err := models.CategorySpending(tx, userID, month)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}

	return bc.Amount, spending[categoryID], true, nil
}
