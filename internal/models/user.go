package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User is an account holder. The settings are independent switches.
type User struct {
	DefaultModel
	Username     string `json:"username" gorm:"uniqueIndex:idx_users_username;not null" example:"asha"`
	PasswordHash string `json:"-"`
	Name         string `json:"name" example:"Asha Verma"`
	Email        string `json:"email" example:"asha@example.com"`
	UPIID        string `json:"upiId" gorm:"column:upi_id" example:"asha@okbank"`

	PushNotifications     bool `json:"pushNotifications" example:"true"`
	UPISpendingLimits     bool `json:"upiSpendingLimits" gorm:"column:upi_spending_limits" example:"true"` // UPI payments are checked against category budgets
	DarkMode              bool `json:"darkMode" example:"false"`
	UPIBlockEnabled       bool `json:"upiBlockEnabled" gorm:"column:upi_block_enabled" example:"true"` // Exceeding a budget with UPI blocks further UPI payments
	AllowCategoryOverflow bool `json:"allowCategoryOverflow" example:"true"`
	UPICurrentlyBlocked   bool `json:"upiCurrentlyBlocked" gorm:"column:upi_currently_blocked" example:"false"`

	BankAccountConnected bool            `json:"bankAccountConnected" example:"true"`
	BankBalance          decimal.Decimal `json:"bankBalance" gorm:"type:DECIMAL(20,8)" example:"5000"`
	LastBalanceUpdate    *time.Time      `json:"lastBalanceUpdate"`
}

// NewUser returns a user with the default settings.
func NewUser(username, passwordHash, name, email, upiID string) User {
	return User{
		Username:              username,
		PasswordHash:          passwordHash,
		Name:                  name,
		Email:                 email,
		UPIID:                 upiID,
		PushNotifications:     true,
		UPISpendingLimits:     true,
		UPIBlockEnabled:       true,
		AllowCategoryOverflow: true,
	}
}

func (u *User) BeforeSave(_ *gorm.DB) error {
	trim(&u.Username, &u.Name, &u.Email, &u.UPIID)
	return nil
}

// AfterCreate seeds the default categories in the same transaction.
func (u *User) AfterCreate(tx *gorm.DB) error {
	categories := DefaultCategories(u.ID)
	return tx.Create(&categories).Error
}

// FindUserForUpdate loads a user and locks the row until tx ends where the
// database supports it.
func FindUserForUpdate(tx *gorm.DB, id uuid.UUID) (User, error) {
	var user User

	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	err := q.First(&user, "id = ?", id).Error
	return user, err
}

// SetUPIBlocked sets the UPI block flag of a user.
func SetUPIBlocked(db *gorm.DB, id uuid.UUID, blocked bool) (User, error) {
	var user User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		return User{}, err
	}

	err = db.Model(&user).Update("upi_currently_blocked", blocked).Error
	if err != nil {
		return User{}, err
	}

	user.UPICurrentlyBlocked = blocked
	return user, nil
}
