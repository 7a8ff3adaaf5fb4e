package domain

import "github.com/google/uuid"

// NewID generates a prefixed, URL-safe identifier for an entity kind, e.g.
// NewID("veh") -> "veh-3fa9c1d2...". Prefixes keep ids self-describing in
// logs and JSON payloads without a lookup.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
