package models

import (
	"time"
)

// RaceRecord is an immutable historical fact: a completed race result
// for one horse. Rows are append-only; the source provides no row id,
// so identity is the natural key (horse, date, race name, city).
type RaceRecord struct {
	Key       string    `json:"key" badgerhold:"key"` // natural key, see sync.RaceKey
	HorseID   string    `json:"horse_id" badgerhold:"index"`
	RaceDate  time.Time `json:"race_date"`
	RaceName  string    `json:"race_name"`
	City      string    `json:"city"`
	Distance  int       `json:"distance,omitempty"`
	Track     string    `json:"track,omitempty"` // surface, e.g. "Çim", "Kum"
	Position  int       `json:"position,omitempty"`
	RaceTime  string    `json:"race_time,omitempty"` // finishing time, e.g. "1.33.94"
	Jockey    string    `json:"jockey,omitempty"`
	Weight    string    `json:"weight,omitempty"`
	Earnings  string    `json:"earnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GallopRecord is a training-session fact, append-only like RaceRecord.
// Natural key = (horse, gallop date, racecourse).
type GallopRecord struct {
	Key        string    `json:"key" badgerhold:"key"` // natural key, see sync.GallopKey
	HorseID    string    `json:"horse_id" badgerhold:"index"`
	GallopDate time.Time `json:"gallop_date"`
	Racecourse string    `json:"racecourse"`
	Distance   int       `json:"distance,omitempty"`
	Time       string    `json:"time,omitempty"`
	Rider      string    `json:"rider,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
