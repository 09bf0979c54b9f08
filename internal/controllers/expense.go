package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/httputil"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/upi"
	pg_uuid "github.com/pocketguard/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseEditable represents all user configurable parameters
type ExpenseEditable struct {
	Amount     decimal.Decimal `json:"amount" swaggertype:"number" example:"120.50"`
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"`
	Date       *time.Time      `json:"date,omitempty" example:"2024-06-12T09:30:00Z"` // Defaults to now
	Note       string          `json:"note" example:"Lunch with friends"`
	IsUPI      bool            `json:"isUPI" example:"true"` // Paid with UPI. UPI expenses are checked against the budget.
}

func (editable ExpenseEditable) model() models.Expense {
	expense := models.Expense{
		Amount:     editable.Amount,
		CategoryID: editable.CategoryID,
		Note:       editable.Note,
		IsUPI:      editable.IsUPI,
	}

	if editable.Date != nil {
		expense.Date = *editable.Date
	}

	return expense
}

// ExpenseQueryFilter contains the fields that expenses can be filtered with.
type ExpenseQueryFilter struct {
	Category pg_uuid.UUID `form:"category"` // ID of the category
}

// Rejection is the response for an expense refused by the UPI gate.
type Rejection struct {
	Message           string `json:"message" example:"UPI transaction rejected. You've exceeded your budget for this category (Food: INR 850.00 of INR 800.00)."`
	Status            string `json:"status" example:"BLOCKED"` // BLOCKED or FAILED
	UPIBlocked        bool   `json:"upiBlocked,omitempty" example:"false"`
	BudgetExceeded    bool   `json:"budgetExceeded,omitempty" example:"true"`
	InsufficientFunds bool   `json:"insufficientFunds,omitempty" example:"false"`
	NowBlocked        bool   `json:"nowBlocked,omitempty" example:"true"` // UPI has been blocked because of this payment
}

// abortGate aborts the request with the response for an error returned by the UPI gate.
func abortGate(c *gin.Context, err error) {
	var rejection *upi.Rejection
	if !errors.As(err, &rejection) {
		httperror.Abort(c, err)
		return
	}

	r := Rejection{
		Message:    rejection.Error(),
		Status:     "BLOCKED",
		NowBlocked: rejection.NowBlocked,
	}

	switch {
	case errors.Is(err, upi.ErrBlocked):
		r.UPIBlocked = true
	case errors.Is(err, upi.ErrBudgetExceeded):
		r.BudgetExceeded = true
	case errors.Is(err, upi.ErrInsufficientFunds):
		r.Status = "FAILED"
		r.InsufficientFunds = true
	}

	c.AbortWithStatusJSON(httperror.Status(err), r)
}

// RegisterExpenseRoutes registers the routes for expenses with
// the RouterGroup that is passed.
func (co Controller) RegisterExpenseRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsExpenseList)
	r.GET("", co.GetExpenses)
	r.POST("", co.CreateExpense)

	r.OPTIONS("/month/:month/year/:year", co.OptionsGet)
	r.GET("/month/:month/year/:year", co.GetExpensesMonth)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Expenses
// @Success		204
// @Router			/api/expenses [options]
func (co Controller) OptionsExpenseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Get expenses
// @Description	Returns the expenses of the authenticated user, newest first
// @Tags			Expenses
// @Produce		json
// @Success		200			{array}		models.Expense
// @Failure		400			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			category	query		string	false	"Filter by category ID"
// @Router			/api/expenses [get]
func (co Controller) GetExpenses(c *gin.Context) {
	var filter ExpenseQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httperror.Abort(c, err)
		return
	}

	expenses, err := models.Expenses(models.DB, models.ExpenseFilter{
		UserID:     auth.User(c).ID,
		CategoryID: filter.Category.UUID,
	})
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// @Summary		Get expenses for month
// @Description	Returns the expenses of a month, newest first
// @Tags			Expenses
// @Produce		json
// @Success		200		{array}		models.Expense
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			month	path		int	true	"Month, 1-12"
// @Param			year	path		int	true	"Year"
// @Router			/api/expenses/month/{month}/year/{year} [get]
func (co Controller) GetExpensesMonth(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	expenses, err := models.Expenses(models.DB, models.ExpenseFilter{
		UserID: auth.User(c).ID,
		Month:  month,
	})
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// @Summary		Create expense
// @Description	Records an expense. UPI expenses are rejected when UPI is blocked or when they exceed the budget of their category.
// @Tags			Expenses
// @Accept			json
// @Produce		json
// @Success		201		{object}	models.Expense
// @Failure		400		{object}	Rejection
// @Failure		403		{object}	Rejection
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			expense	body		ExpenseEditable	true	"Expense"
// @Router			/api/expenses [post]
func (co Controller) CreateExpense(c *gin.Context) {
	var data ExpenseEditable
	if err := bind(c, schemas.Expense, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	expense := data.model()
	expense.UserID = auth.User(c).ID

	expense, err := co.Gate.Submit(c.Request.Context(), models.DB, expense)
	if err != nil {
		abortGate(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}
