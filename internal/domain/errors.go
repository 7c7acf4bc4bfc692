package domain

import (
	"errors"
	"fmt"
)

// Commit-time failures. Everything raised inside the sale transaction
// aborts it entirely; these only describe why.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCustomerNotFound = errors.New("customer not registered")
	// ErrNumberConflict means the sale-number retry budget was exhausted;
	// resubmitting the same cart is safe.
	ErrNumberConflict = errors.New("could not allocate a sale number")
	// ErrBusy is a lock-wait timeout; transient, retryable by the caller.
	ErrBusy = errors.New("store is busy, retry")
	// ErrProductReferenced rejects deleting a product that sale lines point at.
	ErrProductReferenced = errors.New("product is referenced by committed sales")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports the failing line: what was asked for and
// what the locked balance could still cover.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d, have %d)", e.Name, e.Requested, e.Available)
}
