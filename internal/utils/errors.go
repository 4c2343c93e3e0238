package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken            = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials      = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive         = errors.New("ACCOUNT_INACTIVE")
	ErrProductNotFound         = errors.New("PRODUCT_NOT_FOUND")
	ErrInvalidProduct          = errors.New("INVALID_PRODUCT")
	ErrOrderNotFound           = errors.New("ORDER_NOT_FOUND")
	ErrEmptyOrder              = errors.New("EMPTY_ORDER")
	ErrInvalidQuantity         = errors.New("INVALID_QUANTITY")
	ErrInsufficientStock       = errors.New("INSUFFICIENT_STOCK")
	ErrMissingVariants         = errors.New("MISSING_REQUIRED_VARIANTS")
	ErrMissingAddons           = errors.New("MISSING_REQUIRED_ADDONS")
	ErrInvalidStatusTransition = errors.New("INVALID_STATUS_TRANSITION")
	ErrOrderAlreadyCancelled   = errors.New("ORDER_ALREADY_CANCELLED")
)
