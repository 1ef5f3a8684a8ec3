package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	ErrVerificationRequired = errors.New("verification required")
	ErrSessionExpired       = errors.New("verification session expired")
	ErrInvalidCode          = errors.New("invalid verification code")
	ErrTooManyAttempts      = errors.New("too many attempts")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStorage           = errors.New("storage failure")
	ErrDispatch          = errors.New("failed to send verification code")
)

// InsufficientStockError names the line item that aborted an order.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
