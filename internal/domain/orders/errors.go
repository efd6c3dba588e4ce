package orders

import "errors"

var (
	ErrEmptyReference   = errors.New("order reference is required")
	ErrNotDraft         = errors.New("order is no longer a draft")
	ErrNotPlaced        = errors.New("order has not been placed")
	ErrNoLines          = errors.New("order has no lines")
	ErrInvalidLine      = errors.New("order line requires a sku, a positive quantity and a non-negative price")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
)
