package marketchat_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrRateLimited       = errors.New("rate limited")
	ErrTransientDelivery = errors.New("transient delivery failure")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
