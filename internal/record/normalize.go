package record

import (
	"fmt"
	"strings"
)

// PlaceholderTitle is shown when a row has no resolvable title column.
const PlaceholderTitle = "Untitled competition"

// maxSlugLen caps synthesized ids; spreadsheet titles can be essays.
const maxSlugLen = 80

// Canonical is the derived view of one row. It is cheap to build and is
// constructed on demand; the originating record stays reachable for section
// lookups in the detail view.
type Canonical struct {
	ID       string
	Title    string
	Date     string
	Type     string
	Overview string
	Details  string
	Link     string
	Raw      *Indexed
}

// DetailSource names a labeled column used to compose a details fallback
// when the sheet has no dedicated details column.
type DetailSource struct {
	Label  string
	Header string
}

// Normalizer builds canonical records through a resolver.
type Normalizer struct {
	resolver *Resolver
	fallback []DetailSource
}

// NewNormalizer wires a normalizer. fallback drives the composed details
// text for sheets without a details column; pass nil to disable.
func NewNormalizer(resolver *Resolver, fallback []DetailSource) *Normalizer {
	return &Normalizer{resolver: resolver, fallback: fallback}
}

// Normalize derives the canonical view of a record. The id falls back to a
// slug of the title, the title to a placeholder, and the details to a
// composition of labeled fallback columns; everything else resolves to ""
// when absent.
func (n *Normalizer) Normalize(x *Indexed) Canonical {
	title := n.resolver.Field(x, "title")
	if title == "" {
		title = PlaceholderTitle
	}

	id := n.resolver.Field(x, "id")
	if id == "" {
		id = Slug(title)
	}

	details := n.resolver.Field(x, "details")
	if details == "" {
		details = n.composeDetails(x)
	}

	return Canonical{
		ID:       id,
		Title:    title,
		Date:     n.resolver.Field(x, "date"),
		Type:     n.resolver.Field(x, "type"),
		Overview: n.resolver.Field(x, "overview"),
		Details:  details,
		Link:     n.resolver.Field(x, "link"),
		Raw:      x,
	}
}

// composeDetails renders each non-empty fallback column as a labeled line.
// Columns with empty values are skipped entirely, label included.
func (n *Normalizer) composeDetails(x *Indexed) string {
	var lines []string
	for _, src := range n.fallback {
		if v := x.ByHeader(src.Header); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", src.Label, v))
		}
	}
	return strings.Join(lines, "\n")
}

// Slug derives an identifier-safe string: lowercased, runs of
// non-alphanumerics collapsed to single hyphens, trimmed, capped at 80
// characters. Empty input (or input with no usable characters) yields
// "item".
func Slug(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	if out == "" {
		return "item"
	}
	return out
}
