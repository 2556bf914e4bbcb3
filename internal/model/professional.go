package model

// Professional is the stored professional record as seen by the scheduling core.
// Availability is kept in whatever shape the store returned it.
type Professional struct {
	ID           string
	Name         string
	Availability map[string]any
	Settings     SessionSettings
	// RefreshToken authorizes calendar access on the professional's behalf.
	// It is never serialized, so cached copies do not carry it.
	RefreshToken string `json:"-"`
}
