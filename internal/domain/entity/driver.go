package entity

// Driver is owned by the driver directory service
type Driver struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Zone      string `json:"zone"`
	Available bool   `json:"available"`
}
