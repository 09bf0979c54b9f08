package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/httputil"
	"github.com/pocketguard/backend/internal/models"
)

// CategoryEditable represents all user configurable parameters
type CategoryEditable struct {
	Name      string `json:"name" example:"Snacks"`       // Name of the category
	Icon      string `json:"icon" example:"cookie"`       // Name of the icon shown for the category
	IconColor string `json:"iconColor" example:"#F97316"` // Color of the icon as hex code
}

func (editable CategoryEditable) model() models.Category {
	return models.Category{
		Name:      editable.Name,
		Icon:      editable.Icon,
		IconColor: editable.IconColor,
	}
}

type CategoryLinks struct {
	Self     string `json:"self" example:"https://example.com/api/categories/3b1ea324-d438-4419-882a-2fc91d71772f"`               // The category itself
	Expenses string `json:"expenses" example:"https://example.com/api/expenses?category=3b1ea324-d438-4419-882a-2fc91d71772f"` // Expenses in this category
}

type Category struct {
	models.Category
	Links CategoryLinks `json:"links"`
}

func newCategory(c *gin.Context, model models.Category) Category {
	url := c.GetString(string(models.ContextURL))

	return Category{
		Category: model,
		Links: CategoryLinks{
			Self:     url + "/api/categories/" + model.ID.String(),
			Expenses: url + "/api/expenses?category=" + model.ID.String(),
		},
	}
}

// RegisterCategoryRoutes registers the routes for categories with
// the RouterGroup that is passed.
func (co Controller) RegisterCategoryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsCategoryList)
		r.GET("", co.GetCategories)
		r.POST("", co.CreateCategory)
	}

	// Category with ID
	{
		r.OPTIONS("/:id", co.OptionsCategoryDetail)
		r.GET("/:id", co.GetCategory)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Router			/api/categories [options]
func (co Controller) OptionsCategoryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/api/categories/{id} [options]
func (co Controller) OptionsCategoryDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	_, err = models.FindCategory(models.DB, auth.User(c).ID, uri.ID.UUID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Get categories
// @Description	Returns the categories of the authenticated user sorted by name
// @Tags			Categories
// @Produce		json
// @Success		200	{array}		Category
// @Failure		500	{object}	httperror.Error
// @Router			/api/categories [get]
func (co Controller) GetCategories(c *gin.Context) {
	categories, err := models.UserCategories(models.DB, auth.User(c).ID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	data := make([]Category, 0, len(categories))
	for _, category := range categories {
		data = append(data, newCategory(c, category))
	}

	c.JSON(http.StatusOK, data)
}

// @Summary		Create category
// @Description	Creates a new category for the authenticated user
// @Tags			Categories
// @Accept			json
// @Produce		json
// @Success		201			{object}	Category
// @Failure		400			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			category	body		CategoryEditable	true	"Category"
// @Router			/api/categories [post]
func (co Controller) CreateCategory(c *gin.Context) {
	var data CategoryEditable
	if err := bind(c, schemas.Category, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	category := data.model()
	category.UserID = auth.User(c).ID

	err := models.DB.Create(&category).Error
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCategory(c, category))
}

// @Summary		Get category
// @Description	Returns a specific category
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	Category
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/api/categories/{id} [get]
func (co Controller) GetCategory(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	category, err := models.FindCategory(models.DB, auth.User(c).ID, uri.ID.UUID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, newCategory(c, category))
}
