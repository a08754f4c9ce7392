package costing

import (
	"errors"
	"fmt"
)

var ErrInvalidTimezone = errors.New("invalid session timezone")

// InsufficientDataError is returned when a session has no energy readings or no
// connector status events to derive intervals from.
type InsufficientDataError struct {
	SessionId string
	Reason    string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for session %s: %s", e.SessionId, e.Reason)
}

type RateNotFoundError struct {
	RateId string
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("rate %s not found", e.RateId)
}

// BillingError is returned when the billing sink rejects a computed record.
type BillingError struct {
	SessionId string
	Err       error
}

func (e *BillingError) Error() string {
	return fmt.Sprintf("billing session %s: %v", e.SessionId, e.Err)
}

func (e *BillingError) Unwrap() error { return e.Err }
