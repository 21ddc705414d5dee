package models

import (
	"time"
)

// Horse is the identity entity records hang off. ExternalRef is the
// federation site's horse id; nil means the horse was never imported
// from the source and is skipped by sync runs. Once set it is treated
// as immutable.
type Horse struct {
	ID           string  `json:"id" badgerhold:"key"`
	StablemateID string  `json:"stablemate_id" badgerhold:"index"`
	Name         string  `json:"name"`
	ExternalRef  *string `json:"external_ref,omitempty"`
	YearOfBirth  int     `json:"year_of_birth,omitempty"`
	Retired      bool    `json:"retired"` // dead or retired horses are skipped in nightly runs

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Summary snapshot, written only by the reconciliation engine
	Summary HorseSummary `json:"summary"`
}

// HorseSummary is the aggregate snapshot overwritten wholesale on every
// successful fetch. A failed fetch records LastFetchError and leaves the
// remaining fields and LastFetchedAt untouched.
type HorseSummary struct {
	RaceCount      int        `json:"race_count"`
	WinCount       int        `json:"win_count"`
	PlaceCount     int        `json:"place_count"`
	TotalEarnings  string     `json:"total_earnings"`
	Sire           string     `json:"sire"`
	Dam            string     `json:"dam"`
	Pedigree       Pedigree   `json:"pedigree"`
	LastFetchedAt  *time.Time `json:"last_fetched_at,omitempty"`
	LastFetchError string     `json:"last_fetch_error,omitempty"`
}

// Pedigree holds the eight ancestor-name slots the source's summary
// table exposes beyond sire/dam: the four grandparents plus the
// sire-line and dam-line great-grandparents. Each slot merges
// independently under the name-completeness policy.
type Pedigree struct {
	SireSire     string `json:"sire_sire,omitempty"`
	SireDam      string `json:"sire_dam,omitempty"`
	DamSire      string `json:"dam_sire,omitempty"`
	DamDam       string `json:"dam_dam,omitempty"`
	SireSireSire string `json:"sire_sire_sire,omitempty"`
	SireSireDam  string `json:"sire_sire_dam,omitempty"`
	DamSireSire  string `json:"dam_sire_sire,omitempty"`
	DamSireDam   string `json:"dam_sire_dam,omitempty"`
}

// Slots returns pointers to the pedigree fields in a fixed order so
// merge policies can treat them uniformly.
func (p *Pedigree) Slots() []*string {
	return []*string{
		&p.SireSire, &p.SireDam, &p.DamSire, &p.DamDam,
		&p.SireSireSire, &p.SireSireDam, &p.DamSireSire, &p.DamSireDam,
	}
}

// Imported reports whether the horse has an external reference
func (h *Horse) Imported() bool {
	return h.ExternalRef != nil && *h.ExternalRef != ""
}
