package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safkanlabs/safkan/internal/models"
)

func TestMergePedigreeName(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		fresh    string
		want     string
	}{
		{"empty fresh keeps existing", "GALILEO", "", "GALILEO"},
		{"empty existing takes any fresh", "", "GA", "GA"},
		{"both empty", "", "", ""},
		{"longer fresh wins", "GALILE", "GALILEO", "GALILEO"},
		{"equal length keeps existing", "GALILEO", "DANEHIL", "GALILEO"},
		{"shorter fresh assumed truncated", "GALILEO", "GAL", "GALILEO"},
		{"fresh under minimum never replaces", "A", "AB", "A"},
		{"three rune fresh over shorter stored", "AB", "ABC", "ABC"},
		{"rune length not byte length", "ABCD", "ŞÖĞÜÇİ", "ŞÖĞÜÇİ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergePedigreeName(tt.existing, tt.fresh))
		})
	}
}

func TestMergePedigree(t *testing.T) {
	existing := &models.Pedigree{
		SireSire: "GALILEO",
		SireDam:  "URBAN",
	}
	fresh := &models.Pedigree{
		SireSire: "GAL",       // truncated, ignored
		SireDam:  "URBAN SEA", // longer, wins
		DamSire:  "DANEHILL",  // fills empty slot
		DamDam:   "",          // empty, no-op
	}

	changed := MergePedigree(existing, fresh)

	assert.True(t, changed)
	assert.Equal(t, "GALILEO", existing.SireSire)
	assert.Equal(t, "URBAN SEA", existing.SireDam)
	assert.Equal(t, "DANEHILL", existing.DamSire)
	assert.Equal(t, "", existing.DamDam)
}

func TestMergePedigreeNoChange(t *testing.T) {
	existing := &models.Pedigree{SireSire: "GALILEO"}

	assert.False(t, MergePedigree(existing, &models.Pedigree{SireSire: "GAL"}))
	assert.False(t, MergePedigree(existing, &models.Pedigree{}))
	assert.False(t, MergePedigree(existing, nil))
	assert.Equal(t, "GALILEO", existing.SireSire)
}
