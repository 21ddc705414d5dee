package common

import (
	"github.com/google/uuid"
)

// NewHorseID generates a unique horse ID with the "hrs_" prefix
func NewHorseID() string {
	return "hrs_" + uuid.New().String()
}

// NewStablemateID generates a unique stablemate ID with the "stb_" prefix
func NewStablemateID() string {
	return "stb_" + uuid.New().String()
}

// NewRunID generates a unique sync-run ID with the "run_" prefix
func NewRunID() string {
	return "run_" + uuid.New().String()
}
