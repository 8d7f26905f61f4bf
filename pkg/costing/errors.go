package costing

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidMaterial = errors.New("material usage and price must be non-negative")
	ErrInvalidMachine  = errors.New("machine time and rate must be non-negative")
	ErrInvalidEnergy   = errors.New("energy draw and price must be non-negative")
	ErrInvalidLabor    = errors.New("labor time and rate must be non-negative")
	ErrInvalidMargin   = errors.New("margin percent must be between 0 and 100")
	ErrMissingCurrency = errors.New("currency code is required")
)
