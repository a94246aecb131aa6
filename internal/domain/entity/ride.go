package entity

import (
	"fmt"
	"time"
)

// RideStatus is the saga status of a ride
type RideStatus string

// Ride statuses, in lifecycle order
const (
	RideRequested         RideStatus = "REQUESTED"
	RideAssigned          RideStatus = "ASSIGNED"
	RidePaymentAuthorized RideStatus = "PAYMENT_AUTHORIZED"
	RideFailed            RideStatus = "FAILED"
)

var rideStatusRank = map[RideStatus]int{
	RideRequested:         0,
	RideAssigned:          1,
	RidePaymentAuthorized: 2,
	RideFailed:            3,
}

// Valid reports whether s is a known ride status
func (s RideStatus) Valid() bool {
	_, ok := rideStatusRank[s]
	return ok
}

// Terminal reports whether no further saga step can move the ride
func (s RideStatus) Terminal() bool {
	return s == RideFailed || s == RidePaymentAuthorized
}

// Ride is the aggregate owned by the orchestrator
type Ride struct {
	ID            int64      `json:"id"`
	PassengerName string     `json:"passenger_name"`
	FromZone      string     `json:"from_zone"`
	ToZone        string     `json:"to_zone"`
	DriverID      *int64     `json:"driver_id"`
	Amount        *float64   `json:"amount"`
	PaymentID     *int64     `json:"payment_id"`
	Status        RideStatus `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewAssignedRide builds the provisional ride written once both the driver and the price are known.
func NewAssignedRide(passengerName, fromZone, toZone string, driverID int64, amount float64) (*Ride, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative amount %v", ErrInvalidTransition, amount)
	}
	return &Ride{
		PassengerName: passengerName,
		FromZone:      fromZone,
		ToZone:        toZone,
		DriverID:      &driverID,
		Amount:        &amount,
		Status:        RideAssigned,
	}, nil
}

// AttachPayment records an authorized payment and advances the ride to PAYMENT_AUTHORIZED
func (r *Ride) AttachPayment(paymentID int64) error {
	if r.Status != RideAssigned {
		return fmt.Errorf("%w: cannot attach payment to ride in status %s", ErrInvalidTransition, r.Status)
	}
	if r.DriverID == nil || r.Amount == nil {
		return fmt.Errorf("%w: ride %d has no driver or amount", ErrInvalidTransition, r.ID)
	}
	if r.PaymentID != nil {
		return fmt.Errorf("%w: ride %d already has payment %d", ErrInvalidTransition, r.ID, *r.PaymentID)
	}
	r.PaymentID = &paymentID
	r.Status = RidePaymentAuthorized
	return nil
}

// MarkFailed moves the ride to the absorbing FAILED status. Fields set by earlier steps are kept.
func (r *Ride) MarkFailed(reason string) error {
	if r.Status == RideFailed {
		return fmt.Errorf("%w: ride %d already failed", ErrInvalidTransition, r.ID)
	}
	if r.Status == RidePaymentAuthorized {
		return fmt.Errorf("%w: ride %d already has an authorized payment", ErrInvalidTransition, r.ID)
	}
	r.Status = RideFailed
	r.FailureReason = reason
	return nil
}

// Consistent checks the field/status invariants of a ride
func (r *Ride) Consistent() error {
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, r.Status)
	}
	switch r.Status {
	case RidePaymentAuthorized:
		if r.PaymentID == nil {
			return fmt.Errorf("%w: %s ride without payment", ErrInvalidTransition, r.Status)
		}
		fallthrough
	case RideAssigned:
		if r.DriverID == nil || r.Amount == nil {
			return fmt.Errorf("%w: %s ride without driver or amount", ErrInvalidTransition, r.Status)
		}
	}
	if r.Amount != nil && *r.Amount < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransition)
	}
	return nil
}

// Advances reports whether moving from r to next never regresses the status
// and never clears or rewrites a field that was already set.
func (r *Ride) Advances(next *Ride) bool {
	if next.ID != r.ID {
		return false
	}
	if r.Status == RideFailed && next.Status != RideFailed {
		return false
	}
	if rideStatusRank[next.Status] < rideStatusRank[r.Status] {
		return false
	}
	return sameOnceSet(r.DriverID, next.DriverID) &&
		sameOnceSet(r.Amount, next.Amount) &&
		sameOnceSet(r.PaymentID, next.PaymentID)
}

func sameOnceSet[T comparable](prev, next *T) bool {
	if prev == nil {
		return true
	}
	return next != nil && *prev == *next
}

// Clone returns a deep copy
func (r *Ride) Clone() *Ride {
	c := *r
	if r.DriverID != nil {
		v := *r.DriverID
		c.DriverID = &v
	}
	if r.Amount != nil {
		v := *r.Amount
		c.Amount = &v
	}
	if r.PaymentID != nil {
		v := *r.PaymentID
		c.PaymentID = &v
	}
	return &c
}
