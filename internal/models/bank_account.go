package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankAccount is the simulated bank account of a user.
type BankAccount struct {
	DefaultModel
	User        User            `json:"-"`
	UserID      uuid.UUID       `json:"userId" gorm:"uniqueIndex"`
	AccountID   string          `json:"accountId" example:"XXXX4821"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)" example:"5000"`
	LastUpdated time.Time       `json:"lastUpdated" example:"2024-06-12T09:30:00Z"`
	Connected   bool            `json:"connected" example:"true"`
}

func (b *BankAccount) BeforeSave(_ *gorm.DB) error {
	if b.Balance.IsNegative() {
		return ErrNegativeBalance
	}

	trim(&b.AccountID)
	b.LastUpdated = b.LastUpdated.UTC()
	return nil
}

// FindBankAccount returns the connected bank account of a user.
func FindBankAccount(db *gorm.DB, userID uuid.UUID) (BankAccount, error) {
	var account BankAccount
	err := db.Where("user_id = ? AND connected = ?", userID, true).First(&account).Error
	if errors.Is(err, ErrResourceNotFound) {
		return BankAccount{}, fmt.Errorf("%w bank account connected", ErrResourceNotFound)
	}

	return account, err
}

// ConnectBankAccount replaces any account of the user with a new one
// holding the starting balance.
func ConnectBankAccount(db *gorm.DB, userID uuid.UUID, accountID string, balance decimal.Decimal, now time.Time) (BankAccount, error) {
	account := BankAccount{
		UserID:      userID,
		AccountID:   accountID,
		Balance:     balance,
		LastUpdated: now,
		Connected:   true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&BankAccount{}).Error; err != nil {
			return err
		}

		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		return mirrorBalance(tx, userID, true, balance, &account.LastUpdated)
	})

	return account, err
}

// DisconnectBankAccount removes the account and resets the mirrored balance.
func DisconnectBankAccount(db *gorm.DB, userID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindBankAccount(tx, userID); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&BankAccount{}).Error; err != nil {
			return err
		}

		return mirrorBalance(tx, userID, false, decimal.Zero, nil)
	})
}

// SetBankBalance sets the balance of the connected account.
func SetBankBalance(db *gorm.DB, userID uuid.UUID, balance decimal.Decimal, now time.Time) (BankAccount, error) {
	var account BankAccount

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		account, err = FindBankAccount(tx, userID)
		if err != nil {
			return err
		}

		account.Balance = balance
		account.LastUpdated = now
		if err := tx.Save(&account).Error; err != nil {
			return err
		}

		return mirrorBalance(tx, userID, true, balance, &account.LastUpdated)
	})

	return account, err
}

// TouchBankAccount marks the balance of the connected account as current
// without changing it.
func TouchBankAccount(db *gorm.DB, userID uuid.UUID, now time.Time) (BankAccount, error) {
	var account BankAccount
	now = now.UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&BankAccount{}).
			Where("user_id = ? AND connected = ?", userID, true).
			UpdateColumn("last_updated", now)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w bank account connected", ErrResourceNotFound)
		}

		if err := tx.Model(&User{}).Where("id = ?", userID).Update("last_balance_update", now).Error; err != nil {
			return err
		}

		var err error
		account, err = FindBankAccount(tx, userID)
		return err
	})

	return account, err
}

// mirrorBalance copies the bank state to the user record.
func mirrorBalance(tx *gorm.DB, userID uuid.UUID, connected bool, balance decimal.Decimal, updated *time.Time) error {
	// A typed nil pointer in the map is not written as NULL
	var lastUpdate any
	if updated != nil {
		lastUpdate = *updated
	}

	return tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]any{
		"bank_account_connected": connected,
		"bank_balance":           balance,
		"last_balance_update":    lastUpdate,
	}).Error
}
