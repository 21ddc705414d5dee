package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    FetchStatus
		to      FetchStatus
		allowed bool
	}{
		{"idle to in progress", FetchStatusIdle, FetchStatusInProgress, true},
		{"idle to completed skips in progress", FetchStatusIdle, FetchStatusCompleted, false},
		{"idle to failed skips in progress", FetchStatusIdle, FetchStatusFailed, false},
		{"in progress to completed", FetchStatusInProgress, FetchStatusCompleted, true},
		{"in progress to failed", FetchStatusInProgress, FetchStatusFailed, true},
		{"in progress to idle", FetchStatusInProgress, FetchStatusIdle, false},
		{"completed to in progress starts new run", FetchStatusCompleted, FetchStatusInProgress, true},
		{"failed to in progress starts new run", FetchStatusFailed, FetchStatusInProgress, true},
		{"completed to failed", FetchStatusCompleted, FetchStatusFailed, false},
		{"failed to completed", FetchStatusFailed, FetchStatusCompleted, false},
		{"unset behaves as idle", FetchStatus(""), FetchStatusInProgress, true},
		{"unset cannot complete", FetchStatus(""), FetchStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFetchStatusIsTerminal(t *testing.T) {
	assert.False(t, FetchStatusIdle.IsTerminal())
	assert.False(t, FetchStatusInProgress.IsTerminal())
	assert.True(t, FetchStatusCompleted.IsTerminal())
	assert.True(t, FetchStatusFailed.IsTerminal())
}

func TestHorseImported(t *testing.T) {
	ref := "12345"
	empty := ""

	assert.True(t, (&Horse{ExternalRef: &ref}).Imported())
	assert.False(t, (&Horse{ExternalRef: &empty}).Imported())
	assert.False(t, (&Horse{}).Imported())
}

func TestPedigreeSlots(t *testing.T) {
	p := &Pedigree{SireSire: "A", DamSireDam: "B"}

	slots := p.Slots()
	assert.Len(t, slots, 8)
	assert.Equal(t, "A", *slots[0])
	assert.Equal(t, "B", *slots[7])

	*slots[1] = "C"
	assert.Equal(t, "C", p.SireDam)
}
