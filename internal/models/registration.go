package models

import (
	"time"
)

// RegistrationType is the upstream race-entry state
type RegistrationType string

const (
	// RegistrationKayit means registered, jockey not yet fixed
	RegistrationKayit RegistrationType = "KAYIT"
	// RegistrationDeklare means declared, jockey fixed
	RegistrationDeklare RegistrationType = "DEKLARE"
)

// Registration is a pending race entry. Unlike race and gallop history
// it is mutable: the only legal in-place transition is KAYIT -> DEKLARE,
// and rows are deleted when the entry disappears from the source (the
// race ran or the horse was withdrawn).
type Registration struct {
	ID        string           `json:"id" badgerhold:"key"`
	Key       string           `json:"key" badgerhold:"unique"` // natural key, see sync.RegistrationKey
	HorseID   string           `json:"horse_id" badgerhold:"index"`
	RaceDate  time.Time        `json:"race_date"`
	City      string           `json:"city"`
	Distance  int              `json:"distance"`
	Type      RegistrationType `json:"type"`
	RaceName  string           `json:"race_name,omitempty"`
	Jockey    string           `json:"jockey,omitempty"`
	Weight    string           `json:"weight,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
