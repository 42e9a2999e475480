// Package ids produces the opaque identifiers attached to fields, options and
// other builder entities.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is used when New receives an empty prefix.
const DefaultPrefix = "id"

// Common prefixes used across the builder.
const (
	PrefixField  = "fld"
	PrefixOption = "opt"
)

// New returns a unique identifier of the form "<prefix>_<uuid>". The UUID is a
// version 7 value so identifiers sort roughly by creation time; if the v7
// generator fails a random v4 value is used instead.
func New(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}

// HasPrefix reports whether id was generated with the supplied prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
