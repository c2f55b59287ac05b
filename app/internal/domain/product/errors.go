package product

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOutOfStock        = errors.New("product out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock changed during checkout")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// StockConflictError is returned when stock no longer covers a decrement at
// write time.
type StockConflictError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("product %d: requested %d, available %d: %s", e.ProductID, e.Requested, e.Available, ErrStockConflict)
}

func (e *StockConflictError) Unwrap() error {
	return ErrStockConflict
}
