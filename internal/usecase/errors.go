package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an orchestrator call failed
type ErrorKind string

const (
	KindInvalidRequest             ErrorKind = "InvalidRequest"
	KindNoAvailableDriver          ErrorKind = "NoAvailableDriver"
	KindNoPriceForRoute            ErrorKind = "NoPriceForRoute"
	KindUpstreamUnavailable        ErrorKind = "UpstreamUnavailable"
	KindPaymentAuthorizationFailed ErrorKind = "PaymentAuthorizationFailed"
	KindPersistenceFailure         ErrorKind = "PersistenceFailure"
	KindNotFound                   ErrorKind = "NotFound"
	KindStateConflict              ErrorKind = "StateConflict"
)

// OrchestrationError is returned by every RideOrchestrator operation.
// RideID is set once a ride record exists for the failed call.
type OrchestrationError struct {
	Kind         ErrorKind
	Collaborator string
	RideID       int64
	Err          error
}

func (e *OrchestrationError) Error() string {
	msg := string(e.Kind)
	if e.Collaborator != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Collaborator)
	}
	if e.RideID != 0 {
		msg = fmt.Sprintf("%s: ride %d", msg, e.RideID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// Retryable tells "retry later" failures apart from requests that cannot
// succeed as made.
func (e *OrchestrationError) Retryable() bool {
	switch e.Kind {
	case KindUpstreamUnavailable, KindPaymentAuthorizationFailed, KindPersistenceFailure:
		return true
	}
	return false
}

// KindOf extracts the ErrorKind of err, if it is an OrchestrationError
func KindOf(err error) (ErrorKind, bool) {
	var oe *OrchestrationError
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return "", false
}
