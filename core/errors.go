package core

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRateUnavailable   = errors.New("exchange rate unavailable")
	ErrAlreadyUnlocked   = errors.New("locked conversion already unlocked")
	ErrStillLocked       = errors.New("locked conversion still locked")
)
