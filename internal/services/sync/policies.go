package sync

import (
	"unicode/utf8"

	"github.com/safkanlabs/safkan/internal/models"
)

// minPedigreeNameLength is the shortest fresh value the merge policy
// will accept over a non-empty stored value.
const minPedigreeNameLength = 3

// MergePedigreeName decides whether a freshly parsed ancestor name
// replaces the stored one. A fresh value wins only if the stored value
// is empty, or the fresh value is at least three characters and
// strictly longer than the stored one.
//
// This is a heuristic, not a guarantee: shorter newer values are
// assumed to be truncated reads of the same name, not corrections.
// Keep the rule this simple; anything smarter needs real evidence of
// the source publishing corrections.
func MergePedigreeName(existing, fresh string) string {
	if fresh == "" {
		return existing
	}
	if existing == "" {
		return fresh
	}
	if utf8.RuneCountInString(fresh) >= minPedigreeNameLength &&
		utf8.RuneCountInString(fresh) > utf8.RuneCountInString(existing) {
		return fresh
	}
	return existing
}

// MergePedigree applies the name policy to every slot independently and
// reports whether anything changed.
func MergePedigree(existing *models.Pedigree, fresh *models.Pedigree) bool {
	if fresh == nil {
		return false
	}

	changed := false
	existingSlots := existing.Slots()
	freshSlots := fresh.Slots()
	for i := range existingSlots {
		merged := MergePedigreeName(*existingSlots[i], *freshSlots[i])
		if merged != *existingSlots[i] {
			*existingSlots[i] = merged
			changed = true
		}
	}
	return changed
}
