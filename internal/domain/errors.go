package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation marks caller mistakes that are never retried.
	ErrValidation = errors.New("validation failed")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("tendered amount is less than the sale total")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrProductArchived     = errors.New("product is archived")
	ErrCashierRequired     = errors.New("cashier is required")

	// ErrInsufficientStock is matched by *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockConflict is matched by *StockConflictError.
	ErrStockConflict = errors.New("stock conflict")
	// ErrPersistence is matched by *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// InsufficientStockError is returned by cart edits that would exceed the
// stock known at the time of the check.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StockConflictError is returned when the authoritative stock check at commit
// time fails, usually because a concurrent sale consumed the stock first.
// Callers may refresh the cart and retry.
type StockConflictError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock conflict for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *StockConflictError) Is(target error) bool {
	return target == ErrStockConflict
}

// PersistenceError wraps a storage failure. The outcome of the write is
// unknown to the caller only if Op is "commit".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err unless it already carries a domain classification.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindPersistence {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Validationf builds an ErrValidation-wrapped error with a message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Kind classifies errors so callers can react without parsing messages.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "persistence"
	}
}

// KindOf returns the classification of err. Unknown errors are persistence
// errors.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrStockConflict):
		return KindConflict
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrProductArchived),
		errors.Is(err, ErrCashierRequired),
		errors.Is(err, ErrAlreadyExists):
		return KindValidation
	default:
		return KindPersistence
	}
}
