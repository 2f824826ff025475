package pkguid

import "github.com/google/uuid"

// UUID generates RFC 4122 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new random (version 4) UUID string, matching the format
// used for correlation IDs everywhere else.
func (u *UUID) Generate() string {
	return uuid.NewString()
}
