package record

import (
	"strings"

	"compdir/internal/csv"
)

// Indexed pairs a raw record with a lowercase-keyed mirror of its columns.
// The mirror is built once at construction, keeping the raw record itself
// immutable; duplicate headers differing only in case collapse last-wins.
type Indexed struct {
	Raw   csv.Record
	lower map[string]string
}

// NewIndexed builds the lowercase index for a raw record.
func NewIndexed(raw csv.Record) *Indexed {
	lower := make(map[string]string, len(raw))
	for h, v := range raw {
		lower[strings.ToLower(h)] = v
	}
	return &Indexed{Raw: raw, lower: lower}
}

// ByHeader looks a value up by literal header text, case-insensitively.
// Returns "" when the column is absent.
func (x *Indexed) ByHeader(header string) string {
	return x.lower[strings.ToLower(strings.TrimSpace(header))]
}

// Resolver answers logical-field lookups against indexed records.
type Resolver struct {
	fields FieldMap
}

// NewResolver wires a resolver to a validated field map.
func NewResolver(fields FieldMap) *Resolver {
	return &Resolver{fields: fields}
}

// Field returns the value of the first candidate header for the logical
// name that is present and non-empty. Unknown logical names and unresolved
// fields both return "".
func (r *Resolver) Field(x *Indexed, logical string) string {
	for _, candidate := range r.fields[logical] {
		if v := x.ByHeader(candidate); v != "" {
			return v
		}
	}
	return ""
}
