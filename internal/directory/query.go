package directory

import (
	"errors"
	"sort"
	"strings"

	"compdir/internal/dates"
	"compdir/internal/record"
	"compdir/internal/sanitize"
	"compdir/internal/search"
)

// ErrNotFound is returned for an unknown record id.
var ErrNotFound = errors.New("directory: record not found")

// Query describes one directory request.
type Query struct {
	Text     string
	Mode     string // "exact" (default) or "fuzzy"
	Type     string // category pre-filter, "" passes everything
	Page     int    // 1-based; out-of-range values are clamped
	PageSize int    // 0 uses the configured default
	Admin    bool   // elevated view: admin-only sections become visible
}

// Item is the render payload for one directory row. HTML fields are
// sanitized and highlighted; everything else is plain data.
type Item struct {
	ID           string `json:"id"`
	TitleHTML    string `json:"title_html"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	Past         bool   `json:"past"`
	OverviewHTML string `json:"overview_html"`
	Link         string `json:"link,omitempty"`
	FuzzyMatch   bool   `json:"fuzzy_match,omitempty"`
}

// SectionHTML is one labeled detail line of the expanded view.
type SectionHTML struct {
	Label string `json:"label"`
	HTML  string `json:"html"`
}

// Detail extends Item with the long text and the configured sections.
type Detail struct {
	Item
	DetailsHTML string        `json:"details_html"`
	Sections    []SectionHTML `json:"sections"`
}

// PageMeta describes the pagination window of a result.
type PageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
}

// Result is one page of rendered directory entries.
type Result struct {
	Items []Item   `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// Search filters, ranks, paginates, and renders the current batch.
func (s *Service) Search(q Query) (Result, error) {
	batch, err := s.snapshot()
	if err != nil {
		return Result{}, err
	}

	candidates := filterByType(batch.Records, q.Type)
	docs := buildDocs(candidates)

	var matches []search.Match
	if q.Mode == "fuzzy" {
		matches = search.Fuzzy(docs, q.Text)
	} else {
		matches = search.Exact(docs, q.Text)
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	meta := paginate(len(matches), q.Page, pageSize)

	start := (meta.Page - 1) * meta.PageSize
	end := min(start+meta.PageSize, len(matches))

	items := make([]Item, 0, end-start)
	for _, m := range matches[start:end] {
		items = append(items, s.renderItem(candidates[m.Index], q.Text, m.FuzzyOnly))
	}
	return Result{Items: items, Meta: meta}, nil
}

// Detail renders the expanded view of one record. Admin-only sections are
// included only when the caller asserts the elevated view.
func (s *Service) Detail(id string, q Query) (Detail, error) {
	batch, err := s.snapshot()
	if err != nil {
		return Detail{}, err
	}

	c, ok := batch.ByID(id)
	if !ok {
		return Detail{}, ErrNotFound
	}

	d := Detail{
		Item:        s.renderItem(c, q.Text, false),
		DetailsHTML: renderHTML(c.Details, q.Text),
	}
	for _, sec := range s.sections {
		if sec.AdminOnly && !q.Admin {
			continue
		}
		v := c.Raw.ByHeader(sec.Header)
		if v == "" {
			continue
		}
		d.Sections = append(d.Sections, SectionHTML{
			Label: sec.Label,
			HTML:  renderHTML(v, q.Text),
		})
	}
	return d, nil
}

// Types lists the distinct category values of the current batch, sorted
// case-insensitively, for filter dropdowns.
func (s *Service) Types() ([]string, error) {
	batch, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string)
	for _, c := range batch.Records {
		if c.Type == "" {
			continue
		}
		key := strings.ToLower(c.Type)
		if _, ok := seen[key]; !ok {
			seen[key] = c.Type
		}
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}

// Export returns the canonical records of the current batch for the
// download writers.
func (s *Service) Export() ([]record.Canonical, error) {
	batch, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return batch.Records, nil
}

func (s *Service) renderItem(c record.Canonical, query string, fuzzyOnly bool) Item {
	parsed, ok := dates.Parse(c.Date)
	return Item{
		ID:           c.ID,
		TitleHTML:    sanitize.HighlightText(c.Title, query),
		Type:         c.Type,
		Date:         c.Date,
		Past:         dates.IsPast(parsed, ok, s.now()),
		OverviewHTML: renderHTML(c.Overview, query),
		Link:         c.Link,
		FuzzyMatch:   fuzzyOnly,
	}
}

// renderHTML runs the full display pipeline in its required order:
// decode entities, normalize multiline, sanitize, highlight.
func renderHTML(raw, query string) string {
	if raw == "" {
		return ""
	}
	safe := sanitize.Sanitize(sanitize.NormalizeMultiline(sanitize.DecodeEntities(raw)))
	return sanitize.Highlight(safe, query)
}

// filterByType narrows candidates by exact case-insensitive category
// equality before any search runs.
func filterByType(records []record.Canonical, typ string) []record.Canonical {
	if typ == "" {
		return records
	}
	var out []record.Canonical
	for _, c := range records {
		if strings.EqualFold(c.Type, typ) {
			out = append(out, c)
		}
	}
	return out
}

// buildDocs lowers each record into the search representation: individual
// cell values for exact mode, one concatenated text for fuzzy mode. The
// canonical fields are included alongside the raw cells so synthesized
// details and placeholder titles are searchable too.
func buildDocs(records []record.Canonical) []search.Doc {
	docs := make([]search.Doc, len(records))
	for i, c := range records {
		fields := []string{
			strings.ToLower(c.Title),
			strings.ToLower(c.Type),
			strings.ToLower(c.Overview),
			strings.ToLower(c.Details),
		}
		for _, v := range c.Raw.Raw {
			if v != "" {
				fields = append(fields, strings.ToLower(v))
			}
		}
		docs[i] = search.Doc{
			Fields: fields,
			Text:   strings.Join(fields, " "),
		}
	}
	return docs
}

// paginate clamps the requested page into range. Total pages is at least 1
// so an empty result still reports a valid window.
func paginate(total, page, pageSize int) PageMeta {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return PageMeta{Page: page, TotalPages: totalPages, PageSize: pageSize, Total: total}
}
