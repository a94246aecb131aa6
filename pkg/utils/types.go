package utils

// Collaborator names used in errors, logs and metrics
const (
	CollaboratorDriverDirectory = "driver-directory"
	CollaboratorPricing         = "pricing"
	CollaboratorPayment         = "payment"
	CollaboratorRideStore       = "ride-store"
	CollaboratorRideJournal     = "ride-journal"
)

// Constants
const (
	DEFAULT_CURRENCY = "CAD"
	MAX_ZONE_LENGTH  = 16
)
