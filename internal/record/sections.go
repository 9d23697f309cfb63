package record

import "fmt"

// Section names one raw column that surfaces as a labeled line in the
// expanded detail view. AdminOnly entries are shown only when the caller
// asserts an elevated view; this package just honors the flag, it never
// decides how the caller earned it.
type Section struct {
	Label     string `validate:"required"`
	Header    string `validate:"required"`
	AdminOnly bool
}

// DefaultSections is the detail layout for club competition sheets.
func DefaultSections() []Section {
	return []Section{
		{Label: "Overview", Header: "Overview"},
		{Label: "Rules", Header: "Rules"},
		{Label: "Procedures", Header: "Procedures"},
		{Label: "Handicap limit", Header: "Handicap limit"},
		{Label: "Entry fee", Header: "Entry fee"},
		{Label: "Admin notes", Header: "Admin notes", AdminOnly: true},
	}
}

// ValidateSections rejects entries with blank labels or headers.
func ValidateSections(sections []Section) error {
	for i, s := range sections {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("section %d (%q): label and header must be non-empty", i, s.Label)
		}
	}
	return nil
}
