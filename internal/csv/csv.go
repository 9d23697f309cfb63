// Package csv parses published-spreadsheet CSV exports into records.
//
// The parser is deliberately hand-rolled rather than built on encoding/csv:
// sheet exports in the wild contain ragged rows, stray trailing separators,
// and occasionally unterminated quotes, all of which encoding/csv rejects.
// This parser never fails; malformed input degrades to whatever fields were
// accumulated at the point of the defect.
package csv

import (
	"strings"
)

// Record is one data row of the export, keyed by trimmed header name.
// Header case is preserved as it appeared in the sheet.
type Record map[string]string

// Parse converts an entire delimited payload into records.
//
// Fields are separated by commas and rows by \n or \r\n. A field wrapped in
// double quotes may contain literal commas, newlines, and escaped quotes
// ("" becomes "). The first completed row is the header row; every later row
// is zipped against it, with missing trailing fields resolving to "".
// Rows consisting of a single empty field (a bare trailing separator) are
// dropped. An unterminated quote at end of input flushes the partial field
// rather than failing.
func Parse(text string) []Record {
	rows := SplitRows(text)
	if len(rows) == 0 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = CleanHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// SplitRows performs the raw scan: a single left-to-right pass over the
// input maintaining an inside-quotes flag. Exposed for the export writer's
// round-trip tests.
func SplitRows(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endRow := func() {
		row = append(row, field.String())
		field.Reset()
		if keepRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	i := 0
	for i < len(text) {
		c := text[i]
		if inQuotes {
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			field.WriteByte(c)
			i++
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			i++
		case ',':
			row = append(row, field.String())
			field.Reset()
			i++
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
			i++
		case '\n':
			endRow()
			i++
		default:
			field.WriteByte(c)
			i++
		}
	}

	// Flush whatever accumulated, including a field cut short by an
	// unterminated quote.
	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}

	return rows
}

// keepRow drops degenerate rows: a single empty field is the artifact of a
// trailing row separator, not data.
func keepRow(row []string) bool {
	if len(row) >= 2 {
		return true
	}
	return len(row) == 1 && row[0] != ""
}

// CleanHeader trims a header cell and strips the UTF-8 BOM some sheet
// exporters prepend to the first column.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(h)
}

// Write serializes rows back to CSV with RFC 4180 quoting: any field
// containing a comma, quote, or line break is wrapped in quotes with inner
// quotes doubled.
func Write(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeField(f))
		}
		b.WriteString("\r\n")
	}
	return b.String()
}

func escapeField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
