package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrUsernameTaken       = errors.New("this username is already taken")
	ErrAllocationNotUnique = errors.New("a category can only be allocated once per budget")
	ErrReferenceNotFound   = errors.New("the request references a resource that does not exist")
	ErrAmountNotPositive   = errors.New("the amount must be greater than 0")
	ErrNegativeAmount      = errors.New("the amount must not be negative")
	ErrNegativeBalance     = errors.New("the balance must not be negative")
	ErrInvalidDifficulty   = errors.New("the difficulty must be one of easy, medium, hard")
)
