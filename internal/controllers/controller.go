// Package controllers implements the HTTP handlers of the API.
package controllers

import (
	"embed"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/config"
	"github.com/pocketguard/backend/internal/httputil"
	"github.com/pocketguard/backend/internal/money"
	"github.com/pocketguard/backend/internal/quiz"
	"github.com/pocketguard/backend/internal/types"
	"github.com/pocketguard/backend/internal/upi"
	pg_uuid "github.com/pocketguard/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// Controller holds the services the handlers depend on.
type Controller struct {
	Sessions        *auth.Sessions
	Gate            *upi.Gate
	Quiz            *quiz.Engine
	StartingBalance decimal.Decimal // Balance of newly connected bank accounts
	Now             func() time.Time
}

// New creates a Controller for the configuration.
func New(cfg config.Config) (Controller, error) {
	format, err := money.NewFormatter(cfg.Locale.Currency, cfg.Locale.Language)
	if err != nil {
		return Controller{}, err
	}

	return Controller{
		Sessions:        auth.NewSessions(cfg.Session),
		Gate:            upi.NewGate(format),
		Quiz:            quiz.NewEngine(nil),
		StartingBalance: cfg.Bank.StartingBalance,
	}, nil
}

// URIID is the ID of a resource in the path.
type URIID struct {
	ID pg_uuid.UUID `uri:"id" binding:"required"`
}

// URIMonth is a month in the path, e.g. /month/6/year/2024.
type URIMonth struct {
	Month int `uri:"month" binding:"required"`
	Year  int `uri:"year" binding:"required"`
}

// month binds the month from the path.
func (co Controller) month(c *gin.Context) (types.Month, error) {
	var uri URIMonth
	if err := c.ShouldBindUri(&uri); err != nil {
		return types.Month{}, types.ErrInvalidMonth
	}

	return types.ParseMonth(uri.Month, uri.Year)
}

func (co Controller) now() time.Time {
	if co.Now == nil {
		return time.Now()
	}
	return co.Now()
}

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemas = struct {
	Register, Login, Profile, Category, Budget, BudgetUpdate, Allocation,
	Expense, UPITransaction, QuizStart, QuizComplete, BankConnect, BankBalance httputil.Schema
}{
	Register:       httputil.MustLoadSchema(schemaFS, "schemas/register.schema.json"),
	Login:          httputil.MustLoadSchema(schemaFS, "schemas/login.schema.json"),
	Profile:        httputil.MustLoadSchema(schemaFS, "schemas/profile.schema.json"),
	Category:       httputil.MustLoadSchema(schemaFS, "schemas/category.schema.json"),
	Budget:         httputil.MustLoadSchema(schemaFS, "schemas/budget.schema.json"),
	BudgetUpdate:   httputil.MustLoadSchema(schemaFS, "schemas/budget_update.schema.json"),
	Allocation:     httputil.MustLoadSchema(schemaFS, "schemas/allocation.schema.json"),
	Expense:        httputil.MustLoadSchema(schemaFS, "schemas/expense.schema.json"),
	UPITransaction: httputil.MustLoadSchema(schemaFS, "schemas/upi_transaction.schema.json"),
	QuizStart:      httputil.MustLoadSchema(schemaFS, "schemas/quiz_start.schema.json"),
	QuizComplete:   httputil.MustLoadSchema(schemaFS, "schemas/quiz_complete.schema.json"),
	BankConnect:    httputil.MustLoadSchema(schemaFS, "schemas/bank_connect.schema.json"),
	BankBalance:    httputil.MustLoadSchema(schemaFS, "schemas/bank_balance.schema.json"),
}

// bind validates the request body against schema and binds it to data.
func bind(c *gin.Context, schema httputil.Schema, data any) error {
	if err := schema.Validate(c); err != nil {
		return err
	}

	return httputil.BindData(c, data)
}
