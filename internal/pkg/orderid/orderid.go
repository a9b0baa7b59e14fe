// Package orderid generates human-readable, collision-resistant order
// identifiers of the form "ORD" followed by six uppercase hex characters
// drawn from a random UUID.
package orderid

import (
	"strings"

	"github.com/google/uuid"
)

const prefix = "ORD"

func New() string {
	id := uuid.NewString()
	return prefix + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:6])
}

// Normalize canonicalizes buyer-supplied order ids for lookup: ids are
// compared trimmed and case-insensitively.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
