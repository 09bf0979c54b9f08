// Package httperror maps errors to HTTP responses.
package httperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/models"
	"github.com/pocketguard/backend/internal/upi"
)

type Error struct {
	Message string `json:"message" example:"there is no budget for 2024-06"`
}

func New(e error) Error {
	return Error{
		Message: e.Error(),
	}
}

// Status returns the HTTP status for an error.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, upi.ErrBlocked):
		return http.StatusForbidden
	}

	return http.StatusBadRequest
}

// Abort aborts the request with the status for err and the error as body.
//
// Server errors do not expose details, they reference the request ID instead.
func Abort(c *gin.Context, err error) {
	status := Status(err)

	if status == http.StatusInternalServerError {
		err = fmt.Errorf("%w. The request id is '%s', send this to your server administrator to help them find the problem", models.ErrGeneral, requestid.Get(c))
	}

	c.AbortWithStatusJSON(status, New(err))
}
