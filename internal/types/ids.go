package types

import (
	"time"

	"github.com/google/uuid"
)

// PresetID represents a UUIDv7 filter preset identifier.
type PresetID string

// NewID generates a UUIDv7 record identifier.
// Time-ordered IDs keep imported rows in insertion order.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewPresetID generates a UUIDv7 preset identifier.
func NewPresetID() PresetID {
	return PresetID(NewID())
}

// ParsePresetID validates and converts a string to PresetID.
func ParsePresetID(s string) (PresetID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return PresetID(s), nil
}

// IDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func IDTime(id string) time.Time {
	u, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
