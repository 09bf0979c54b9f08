package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/models"
	"github.com/shopspring/decimal"
)

// defaultUPINote is the note of UPI payments that do not set one.
const defaultUPINote = "UPI Transaction"

type UPITransaction struct {
	Amount     decimal.Decimal `json:"amount" swaggertype:"number" example:"250"`
	CategoryID uuid.UUID       `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"`
	Note       string          `json:"note" example:"Movie tickets"` // Defaults to "UPI Transaction"
}

type UPIReceipt struct {
	Status        string           `json:"status" example:"SUCCESS"`
	TransactionID string           `json:"transactionId" example:"UPI0f8c9d4e-5a61-4c4b-9bd6-55d0e0c3f3a1"`
	Expense       models.Expense   `json:"expense"`
	BankBalance   *decimal.Decimal `json:"bankBalance" swaggertype:"number" example:"4750"` // Balance after the payment, null without a connected bank account
}

// RegisterUPIRoutes registers the routes for UPI payments with
// the RouterGroup that is passed.
func (co Controller) RegisterUPIRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/block", co.OptionsPost)
	r.POST("/block", co.BlockUPI)
	r.OPTIONS("/unblock", co.OptionsPost)
	r.POST("/unblock", co.UnblockUPI)
	r.OPTIONS("/transaction", co.OptionsPost)
	r.POST("/transaction", co.CreateUPITransaction)
}

// @Summary		Block UPI
// @Description	Blocks UPI payments for the authenticated user
// @Tags			UPI
// @Produce		json
// @Success		200	{object}	models.User
// @Failure		500	{object}	httperror.Error
// @Router			/api/upi/block [post]
func (co Controller) BlockUPI(c *gin.Context) {
	co.setUPIBlocked(c, true)
}

// @Summary		Unblock UPI
// @Description	Unblocks UPI payments for the authenticated user
// @Tags			UPI
// @Produce		json
// @Success		200	{object}	models.User
// @Failure		500	{object}	httperror.Error
// @Router			/api/upi/unblock [post]
func (co Controller) UnblockUPI(c *gin.Context) {
	co.setUPIBlocked(c, false)
}

func (co Controller) setUPIBlocked(c *gin.Context, blocked bool) {
	user, err := models.SetUPIBlocked(models.DB, auth.User(c).ID, blocked)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary		Pay with UPI
// @Description	Simulates a UPI payment. The payment is checked against the budget and debited from the connected bank account.
// @Tags			UPI
// @Accept			json
// @Produce		json
// @Success		201			{object}	UPIReceipt
// @Failure		400			{object}	Rejection
// @Failure		403			{object}	Rejection
// @Failure		404			{object}	httperror.Error
// @Failure		500			{object}	httperror.Error
// @Param			transaction	body		UPITransaction	true	"Transaction"
// @Router			/api/upi/transaction [post]
func (co Controller) CreateUPITransaction(c *gin.Context) {
	var data UPITransaction
	if err := bind(c, schemas.UPITransaction, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	if data.Note == "" {
		data.Note = defaultUPINote
	}

	payment, err := co.Gate.Pay(c.Request.Context(), models.DB, auth.User(c).ID, data.CategoryID, data.Amount, data.Note)
	if err != nil {
		abortGate(c, err)
		return
	}

	c.JSON(http.StatusCreated, UPIReceipt{
		Status:        "SUCCESS",
		TransactionID: "UPI" + payment.Expense.ID.String(),
		Expense:       payment.Expense,
		BankBalance:   payment.BankBalance,
	})
}
