package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the actor is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
)

// InsufficientStockError is returned when a reservation asks for more units
// than a product currently has.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// PriceMismatchError is returned when a submitted unit price no longer matches
// the catalog price.
type PriceMismatchError struct {
	ProductID string
	Submitted int64
	Current   int64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price mismatch for product %s: submitted %d, current %d", e.ProductID, e.Submitted, e.Current)
}

// InvalidTransitionError is returned for an order status change outside the
// legal transition table.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// UpstreamError wraps a failure talking to the payment provider. Callers
// should treat it as retryable.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payment provider %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
