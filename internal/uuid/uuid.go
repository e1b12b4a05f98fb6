// Package uuid generates the opaque ids used for ideas, videos, tags and
// settings.
package uuid

import (
	"regexp"

	"github.com/google/uuid"
)

// UUID v4 format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
var uuidV4Regex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// New generates a new UUID v4.
func New() string {
	return uuid.New().String()
}

// IsGenerated reports whether s looks like an id produced by New. Ids
// created elsewhere (imports, older clients) are still accepted by the
// repositories; this only distinguishes them.
func IsGenerated(s string) bool {
	return uuidV4Regex.MatchString(s)
}
