package checkout

import "fmt"

// ValidationError rejects a malformed request before any unit of work opens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout request: %s", e.Reason)
}

// ProductNotFoundError aborts the whole checkout when a referenced product
// does not exist. No mutation occurs.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// InsufficientStockError aborts the whole checkout when requested quantity
// exceeds available stock for a product. No mutation occurs, even for lines
// that would have succeeded.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d, requested=%d",
		e.ProductID, e.Available, e.Requested)
}

// UnderpaymentError is returned instead of committing a negative-change
// transaction when the engine is configured to reject underpayment.
type UnderpaymentError struct {
	TotalPrice int64
	PaidAmount int64
}

func (e *UnderpaymentError) Error() string {
	return fmt.Sprintf("paid amount %d is less than total price %d", e.PaidAmount, e.TotalPrice)
}

// ConflictError is surfaced when the retry budget is exhausted on
// serialization conflicts. It is retryable from the caller's side.
type ConflictError struct {
	Attempts int
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("checkout aborted after %d conflicting attempts: %v", e.Attempts, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// StoreUnavailableError indicates the store could not be reached or the
// attempt timed out outside the normal conflict path.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
