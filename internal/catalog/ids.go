package catalog

import "github.com/google/uuid"

// newID generates an opaque, globally unique, time-sortable identifier
// via UUIDv7, which embeds a millisecond timestamp in its high bits.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the system's random source is broken; fall
		// back to v4 rather than propagating an error from every insert.
		return uuid.NewString()
	}
	return id.String()
}
