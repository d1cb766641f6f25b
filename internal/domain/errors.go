package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error carries a caller-facing message and its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrContractNotFound     = NotFound("Contract not found")
	ErrNotInPortfolio       = NotFound("Contract not in portfolio")
	ErrAlreadyInPortfolio   = Conflict("Contract already in portfolio")
	ErrContractInPortfolio  = Conflict("Cannot delete contract that is in portfolio")
	ErrInvalidDeliveryDates = Validation("delivery_end must be >= delivery_start")
	ErrStatusNotEditable    = Validation("status changes only through portfolio operations")
)

// NotAvailable reports an attempt to reserve a contract that is not Available.
func NotAvailable(status ContractStatus) error {
	return Conflict("Contract is %s, only Available contracts can be added", status)
}
