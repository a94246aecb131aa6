package entity

// PaymentStatus is the status of a payment hold
type PaymentStatus string

// Payment statuses
const (
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentCaptured   PaymentStatus = "CAPTURED"
	PaymentFailed     PaymentStatus = "FAILED"
)

// Payment is owned by the payment ledger service
type Payment struct {
	ID       int64         `json:"id"`
	RideID   int64         `json:"ride_id"`
	Amount   float64       `json:"amount"`
	Currency string        `json:"currency"`
	Status   PaymentStatus `json:"status"`
}

// PaymentResult is what the ledger returns for authorize and capture
type PaymentResult struct {
	PaymentID int64         `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
}
