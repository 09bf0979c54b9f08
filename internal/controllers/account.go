package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/httputil"
	"github.com/pocketguard/backend/internal/models"
	"github.com/rs/zerolog/log"
)

type Registration struct {
	Username string `json:"username" example:"asha"`
	Password string `json:"password" example:"correct horse battery"`
	Name     string `json:"name" example:"Asha Verma"`
	Email    string `json:"email" example:"asha@example.com"`
	UPIID    string `json:"upiId" example:"asha@okbank"`
}

type Credentials struct {
	Username string `json:"username" example:"asha"`
	Password string `json:"password" example:"correct horse battery"`
}

// ProfileEditable represents all user configurable settings
type ProfileEditable struct {
	Name                  string `json:"name" example:"Asha Verma"`
	Email                 string `json:"email" example:"asha@example.com"`
	UPIID                 string `json:"upiId" example:"asha@okbank"`
	PushNotifications     bool   `json:"pushNotifications" example:"true"`
	UPISpendingLimits     bool   `json:"upiSpendingLimits" example:"true"`
	DarkMode              bool   `json:"darkMode" example:"false"`
	UPIBlockEnabled       bool   `json:"upiBlockEnabled" example:"true"`
	AllowCategoryOverflow bool   `json:"allowCategoryOverflow" example:"true"`
}

func (editable ProfileEditable) model() models.User {
	return models.User{
		Name:                  editable.Name,
		Email:                 editable.Email,
		UPIID:                 editable.UPIID,
		PushNotifications:     editable.PushNotifications,
		UPISpendingLimits:     editable.UPISpendingLimits,
		DarkMode:              editable.DarkMode,
		UPIBlockEnabled:       editable.UPIBlockEnabled,
		AllowCategoryOverflow: editable.AllowCategoryOverflow,
	}
}

// RegisterAccountRoutes registers the routes for accounts and sessions with
// the RouterGroup that is passed. limit guards the endpoints that take passwords.
func (co Controller) RegisterAccountRoutes(r *gin.RouterGroup, limit gin.HandlerFunc) {
	r.OPTIONS("/register", co.OptionsPost)
	r.POST("/register", limit, co.Register)
	r.OPTIONS("/login", co.OptionsPost)
	r.POST("/login", limit, co.Login)
	r.OPTIONS("/logout", co.OptionsPost)
	r.POST("/logout", co.Logout)

	r.OPTIONS("/user", co.OptionsGet)
	r.GET("/user", co.GetUser)
	r.OPTIONS("/user/profile", co.OptionsPut)
	r.PUT("/user/profile", co.UpdateProfile)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/api/register [options]
// @Router			/api/login [options]
// @Router			/api/logout [options]
func (co Controller) OptionsPost(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/api/user [options]
func (co Controller) OptionsGet(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/api/user/profile [options]
func (co Controller) OptionsPut(c *gin.Context) {
	httputil.OptionsPut(c)
}

// @Summary		Register
// @Description	Creates a user with the default categories and starts a session
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		201				{object}	models.User
// @Failure		400				{object}	httperror.Error
// @Failure		500				{object}	httperror.Error
// @Param			registration	body		Registration	true	"Registration"
// @Router			/api/register [post]
func (co Controller) Register(c *gin.Context) {
	var data Registration
	if err := bind(c, schemas.Register, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	user := models.NewUser(data.Username, hash, data.Name, data.Email, data.UPIID)
	err = models.DB.Create(&user).Error
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	if err := co.Sessions.Start(c, user.ID); err != nil {
		httperror.Abort(c, err)
		return
	}

	log.Info().Str("user", user.ID.String()).Msg("user registered")
	c.JSON(http.StatusCreated, user)
}

// @Summary		Log in
// @Description	Starts a session for the user
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200			{object}	models.User
// @Failure		400			{object}	httperror.Error
// @Failure		401			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			credentials	body		Credentials	true	"Credentials"
// @Router			/api/login [post]
func (co Controller) Login(c *gin.Context) {
	var data Credentials
	if err := bind(c, schemas.Login, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	var user models.User
	err := models.DB.Where("username = ?", strings.TrimSpace(data.Username)).First(&user).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		httperror.Abort(c, auth.ErrInvalidCredentials)
		return
	} else if err != nil {
		httperror.Abort(c, err)
		return
	}

	if err := auth.ComparePassword(user.PasswordHash, data.Password); err != nil {
		httperror.Abort(c, err)
		return
	}

	if err := co.Sessions.Start(c, user.ID); err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary		Log out
// @Description	Ends the session
// @Tags			Accounts
// @Success		204
// @Router			/api/logout [post]
func (co Controller) Logout(c *gin.Context) {
	co.Sessions.End(c)
	c.Status(http.StatusNoContent)
}

// @Summary		Get user
// @Description	Returns the authenticated user
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	models.User
// @Router			/api/user [get]
func (co Controller) GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, auth.User(c))
}

// @Summary		Update profile
// @Description	Updates the profile and settings of the authenticated user. Only values to be updated need to be specified.
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200		{object}	models.User
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			profile	body		ProfileEditable	true	"Profile"
// @Router			/api/user/profile [put]
func (co Controller) UpdateProfile(c *gin.Context) {
	user := auth.User(c)

	if err := schemas.Profile.Validate(c); err != nil {
		httperror.Abort(c, err)
		return
	}

	updateFields, err := httputil.GetBodyFields(c, ProfileEditable{})
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	var data ProfileEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	if len(updateFields) > 0 {
		err = models.DB.Model(&user).Select("", updateFields...).Updates(data.model()).Error
		if err != nil {
			httperror.Abort(c, err)
			return
		}
	}

	err = models.DB.First(&user, "id = ?", user.ID).Error
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
