package entity

// Price is the resolved fare for an ordered zone pair
type Price struct {
	FromZone string  `json:"from_zone"`
	ToZone   string  `json:"to_zone"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}
