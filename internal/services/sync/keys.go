package sync

import (
	"strconv"
	"strings"
	"time"

	"github.com/safkanlabs/safkan/internal/models"
)

// Natural keys stand in for the row identifiers the source never
// provides. They are pure functions of intrinsic record attributes:
// stable across repeated parses of the same fact even when incidental
// formatting differs, and distinct for genuinely different facts (two
// races on the same date in different cities get different keys). All
// reconciliation routes through these functions; records are never
// compared field by field.

const keySeparator = "|"

// normalizeKeyPart makes a key component insensitive to incidental
// whitespace and letter-case differences between fetches.
func normalizeKeyPart(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func keyDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// RaceKey derives the natural key of a completed race result
func RaceKey(horseID string, raceDate time.Time, raceName, city string) string {
	return strings.Join([]string{
		horseID,
		keyDate(raceDate),
		normalizeKeyPart(raceName),
		normalizeKeyPart(city),
	}, keySeparator)
}

// RegistrationKey derives the natural key of a pending race entry.
// Distance, not race name, disambiguates same-day entries because the
// source renames pending races freely but never moves their distance.
func RegistrationKey(horseID string, raceDate time.Time, city string, distance int) string {
	return strings.Join([]string{
		horseID,
		keyDate(raceDate),
		normalizeKeyPart(city),
		strconv.Itoa(distance),
	}, keySeparator)
}

// GallopKey derives the natural key of a training session
func GallopKey(horseID string, gallopDate time.Time, racecourse string) string {
	return strings.Join([]string{
		horseID,
		keyDate(gallopDate),
		normalizeKeyPart(racecourse),
	}, keySeparator)
}

// KeyRace stamps a parsed race record with its owner and natural key
func KeyRace(horseID string, record *models.RaceRecord) {
	record.HorseID = horseID
	record.Key = RaceKey(horseID, record.RaceDate, record.RaceName, record.City)
}

// KeyRegistration stamps a parsed registration with its owner and natural key
func KeyRegistration(horseID string, registration *models.Registration) {
	registration.HorseID = horseID
	registration.Key = RegistrationKey(horseID, registration.RaceDate, registration.City, registration.Distance)
}

// KeyGallop stamps a parsed gallop record with its owner and natural key
func KeyGallop(horseID string, record *models.GallopRecord) {
	record.HorseID = horseID
	record.Key = GallopKey(horseID, record.GallopDate, record.Racecourse)
}

