// Package record resolves logical fields against free-form spreadsheet
// headers and builds the canonical view the rest of the application works
// with. Sheet owners rename columns without warning, so nothing here matches
// headers positionally: every lookup goes through a prioritized,
// case-insensitive candidate list.
package record

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldMap maps a logical field name to the column headers that may carry
// it, in priority order. The first candidate with a non-empty value wins.
type FieldMap map[string][]string

// DefaultFieldMap covers the header spellings seen across club sheets.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		"id":       {"ID", "Comp ID", "Competition ID", "Ref"},
		"title":    {"Comp name", "Competition", "Title", "Name", "Event"},
		"date":     {"Date", "Comp date", "Event date"},
		"type":     {"Type", "Category", "Comp type"},
		"overview": {"Overview", "Summary", "Short description"},
		"details":  {"Details", "Description", "Notes", "Info"},
		"link":     {"Link", "URL", "Entry link", "More info"},
	}
}

var validate = validator.New()

// Validate rejects a field map with empty logical names, empty candidate
// lists, or blank candidate headers. Called once at startup so a bad
// configuration fails fast instead of silently resolving nothing.
func (m FieldMap) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("field map is empty")
	}
	for name, candidates := range m {
		if err := validate.Var(name, "required"); err != nil {
			return fmt.Errorf("field map: blank logical name")
		}
		if err := validate.Var(candidates, "min=1,dive,required"); err != nil {
			return fmt.Errorf("field map %q: needs at least one non-blank header", name)
		}
	}
	return nil
}
