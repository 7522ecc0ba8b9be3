package domain

import "errors"

var (
	// ErrInsufficientStock rejects a cart mutation that would push a line's
	// quantity above its stock ceiling. State is left untouched.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity rejects additions with a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrItemNotFound reports a quantity update against an unknown cart line.
	ErrItemNotFound = errors.New("cart item not found")
)
