package entity

import "time"

// Saga steps recorded in the ride journal
const (
	StepResolveDriver    = "resolve_driver"
	StepResolvePrice     = "resolve_price"
	StepReserveDriver    = "reserve_driver"
	StepPersistRide      = "persist_ride"
	StepAuthorizePayment = "authorize_payment"
	StepMarkFailed       = "mark_failed"
	StepReleaseDriver    = "release_driver"
	StepCapturePayment   = "capture_payment"
)

// Step outcomes
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
)

// RideEvent is one entry of the saga journal
type RideEvent struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	RideID       int64     `json:"rideId" bson:"rideId"`
	SagaID       string    `json:"sagaId" bson:"sagaId"`
	Step         string    `json:"step" bson:"step"`
	Outcome      string    `json:"outcome" bson:"outcome"`
	Collaborator string    `json:"collaborator,omitempty" bson:"collaborator,omitempty"`
	Detail       string    `json:"detail,omitempty" bson:"detail,omitempty"`
	OccurredAt   time.Time `json:"occurredAt" bson:"occurredAt"`
}
