package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/httputil"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/types"
	pg_uuid "github.com/pocketguard/backend/internal/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// AllocationEditable is the allocation of an amount to a category.
type AllocationEditable struct {
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"`
	Amount     decimal.Decimal `json:"amount" swaggertype:"number" example:"800"`
}

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	TotalAmount decimal.Decimal      `json:"totalAmount" swaggertype:"number" example:"3000"`
	Month       int                  `json:"month" minimum:"1" maximum:"12" example:"6"`
	Year        int                  `json:"year" example:"2024"`
	Categories  []AllocationEditable `json:"categories"`
}

func (editable BudgetEditable) model() (models.Budget, []models.BudgetCategory) {
	allocations := make([]models.BudgetCategory, 0, len(editable.Categories))
	for _, a := range editable.Categories {
		allocations = append(allocations, models.BudgetCategory{
			CategoryID: a.CategoryID,
			Amount:     a.Amount,
		})
	}

	return models.Budget{
		TotalAmount: editable.TotalAmount,
		Month:       editable.Month,
		Year:        editable.Year,
	}, allocations
}

type BudgetUpdate struct {
	TotalAmount decimal.Decimal `json:"totalAmount" swaggertype:"number" example:"3500"`
}

type AllocationUpdate struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"number" example:"900"`
}

// URIAllocation identifies the allocation of a category in a budget.
type URIAllocation struct {
	ID         pg_uuid.UUID `uri:"id" binding:"required"`
	CategoryID pg_uuid.UUID `uri:"categoryId" binding:"required"`
}

// CategorySpending is the spend of a category in a month.
type CategorySpending struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Category   models.Category `json:"category"`
	Spent      decimal.Decimal `json:"spent" example:"450.50"`
}

// RegisterBudgetRoutes registers the routes for budgets with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsPost)
	r.POST("", co.CreateBudget)

	r.OPTIONS("/current", co.OptionsGet)
	r.GET("/current", co.GetCurrentBudget)
	r.OPTIONS("/month/:month/year/:year", co.OptionsGet)
	r.GET("/month/:month/year/:year", co.GetBudgetMonth)

	r.OPTIONS("/:id", co.OptionsPatch)
	r.PATCH("/:id", co.UpdateBudget)
	r.OPTIONS("/:id/categories/:categoryId", co.OptionsPut)
	r.PUT("/:id/categories/:categoryId", co.SetAllocation)
}

// RegisterSpendingRoutes registers the routes for spending summaries with
// the RouterGroup that is passed.
func (co Controller) RegisterSpendingRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/month/:month/year/:year", co.OptionsGet)
	r.GET("/month/:month/year/:year", co.GetSpending)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Param			id	path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/api/budgets/{id} [options]
func (co Controller) OptionsPatch(c *gin.Context) {
	httputil.OptionsPatch(c)
}

// summary writes the summary of a budget to the response.
func (co Controller) summary(c *gin.Context, budget models.Budget, status int) {
	summary, err := budget.Summary(models.DB, co.now())
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(status, summary)
}

// @Summary		Get current budget
// @Description	Returns the budget of the current month with the spend of all allocated categories
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	models.BudgetSummary
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Router			/api/budgets/current [get]
func (co Controller) GetCurrentBudget(c *gin.Context) {
	budget, err := models.FindBudget(models.DB, auth.User(c).ID, types.MonthOf(co.now()))
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	co.summary(c, budget, http.StatusOK)
}

// @Summary		Get budget for month
// @Description	Returns the budget of a month with the spend of all allocated categories
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	models.BudgetSummary
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			month	path		int	true	"Month, 1-12"
// @Param			year	path		int	true	"Year"
// @Router			/api/budgets/month/{month}/year/{year} [get]
func (co Controller) GetBudgetMonth(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	budget, err := models.FindBudget(models.DB, auth.User(c).ID, month)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	co.summary(c, budget, http.StatusOK)
}

// @Summary		Create budget
// @Description	Creates a budget with its category allocations
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		201		{object}	models.BudgetSummary
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/api/budgets [post]
func (co Controller) CreateBudget(c *gin.Context) {
	var data BudgetEditable
	if err := bind(c, schemas.Budget, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	budget, allocations := data.model()
	budget.UserID = auth.User(c).ID

	err := models.CreateBudget(models.DB, &budget, allocations)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	co.summary(c, budget, http.StatusCreated)
}

// findBudget returns the budget with the ID in the path if it belongs to the user.
func findBudget(c *gin.Context, id uuid.UUID) (models.Budget, error) {
	var budget models.Budget
	err := models.DB.Where(&models.Budget{UserID: auth.User(c).ID}).First(&budget, "id = ?", id).Error
	return budget, err
}

// @Summary		Update budget
// @Description	Updates the total amount of a budget
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	models.BudgetSummary
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			budget	body		BudgetUpdate	true	"Budget"
// @Router			/api/budgets/{id} [patch]
func (co Controller) UpdateBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	budget, err := findBudget(c, uri.ID.UUID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	var data BudgetUpdate
	if err := bind(c, schemas.BudgetUpdate, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	budget.TotalAmount = data.TotalAmount
	err = models.DB.Model(&budget).Update("total_amount", data.TotalAmount).Error
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	co.summary(c, budget, http.StatusOK)
}

// @Summary		Set allocation
// @Description	Creates or updates the allocation of a category in a budget
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200			{object}	models.BudgetCategory
// @Failure		400			{object}	httperror.Error
// @Failure		404			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			categoryId	path		string				true	"ID of the category"
// @Param			allocation	body		AllocationUpdate	true	"Allocation"
// @Router			/api/budgets/{id}/categories/{categoryId} [put]
func (co Controller) SetAllocation(c *gin.Context) {
	var uri URIAllocation
	err := c.ShouldBindUri(&uri)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	budget, err := findBudget(c, uri.ID.UUID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	var data AllocationUpdate
	if err := bind(c, schemas.Allocation, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	allocation, err := models.SetAllocation(models.DB, budget, uri.CategoryID.UUID, data.Amount)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

// @Summary		Get spending
// @Description	Returns the spend per category in a month, highest first. Categories without expenses are omitted.
// @Tags			Budgets
// @Produce		json
// @Success		200		{array}		CategorySpending
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			month	path		int	true	"Month, 1-12"
// @Param			year	path		int	true	"Year"
// @Router			/api/spending/month/{month}/year/{year} [get]
func (co Controller) GetSpending(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	user := auth.User(c)
	spending, err := models.CategorySpending(models.DB, user.ID, month)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	categories, err := models.UserCategories(models.DB, user.ID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	data := make([]CategorySpending, 0, len(spending))
	for _, category := range categories {
		spent, ok := spending[category.ID]
		if !ok {
			continue
		}
		data = append(data, CategorySpending{CategoryID: category.ID, Category: category, Spent: spent})
	}

	slices.SortStableFunc(data, func(a, b CategorySpending) int {
		return b.Spent.Cmp(a.Spent)
	})

	c.JSON(http.StatusOK, data)
}
