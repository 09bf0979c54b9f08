package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/models"
	"github.com/shopspring/decimal"
)

type BankConnection struct {
	AccountID string `json:"accountId" example:"XXXX4821"` // Masked number of the account
}

type BankBalance struct {
	Balance decimal.Decimal `json:"balance" swaggertype:"number" example:"4200"`
}

// RegisterBankRoutes registers the routes for the simulated bank account with
// the RouterGroup that is passed.
func (co Controller) RegisterBankRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/info", co.OptionsGet)
	r.GET("/info", co.GetBankAccount)
	r.OPTIONS("/connect", co.OptionsPost)
	r.POST("/connect", co.ConnectBankAccount)
	r.OPTIONS("/balance", co.OptionsPut)
	r.PUT("/balance", co.SetBankBalance)
	r.OPTIONS("/refresh", co.OptionsPost)
	r.POST("/refresh", co.RefreshBankAccount)
	r.OPTIONS("/disconnect", co.OptionsPost)
	r.POST("/disconnect", co.DisconnectBankAccount)
}

// @Summary		Get bank account
// @Description	Returns the connected bank account
// @Tags			Bank
// @Produce		json
// @Success		200	{object}	models.BankAccount
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Router			/api/bank/info [get]
func (co Controller) GetBankAccount(c *gin.Context) {
	account, err := models.FindBankAccount(models.DB, auth.User(c).ID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// @Summary		Connect bank account
// @Description	Connects a simulated bank account with the starting balance. An account that is already connected is replaced.
// @Tags			Bank
// @Accept			json
// @Produce		json
// @Success		201			{object}	models.BankAccount
// @Failure		400			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			connection	body		BankConnection	true	"Connection"
// @Router			/api/bank/connect [post]
func (co Controller) ConnectBankAccount(c *gin.Context) {
	var data BankConnection
	if err := bind(c, schemas.BankConnect, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	account, err := models.ConnectBankAccount(models.DB, auth.User(c).ID, data.AccountID, co.StartingBalance, co.now())
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// @Summary		Set bank balance
// @Description	Sets the balance of the connected bank account
// @Tags			Bank
// @Accept			json
// @Produce		json
// @Success		200		{object}	models.BankAccount
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			balance	body		BankBalance	true	"Balance"
// @Router			/api/bank/balance [put]
func (co Controller) SetBankBalance(c *gin.Context) {
	var data BankBalance
	if err := bind(c, schemas.BankBalance, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	account, err := models.SetBankBalance(models.DB, auth.User(c).ID, data.Balance, co.now())
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// @Summary		Refresh bank account
// @Description	Fetches the balance of the connected bank account again
// @Tags			Bank
// @Produce		json
// @Success		200	{object}	models.BankAccount
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Router			/api/bank/refresh [post]
func (co Controller) RefreshBankAccount(c *gin.Context) {
	// The simulated bank never changes the balance on its own
	account, err := models.TouchBankAccount(models.DB, auth.User(c).ID, co.now())
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// @Summary		Disconnect bank account
// @Description	Removes the connected bank account
// @Tags			Bank
// @Success		204
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Router			/api/bank/disconnect [post]
func (co Controller) DisconnectBankAccount(c *gin.Context) {
	err := models.DisconnectBankAccount(models.DB, auth.User(c).ID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
