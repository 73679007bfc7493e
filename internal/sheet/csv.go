// Package sheet turns a published spreadsheet CSV export into rows and
// resolves semantic columns through the header row.
package sheet

import (
	"strings"
	"unicode"
)

const byteOrderMark = '\uFEFF'

// Row is one parsed line of the export; cells are already trimmed.
type Row []string

// Parse tokenizes comma-separated text. Quoted cells may contain commas and
// line breaks, a doubled quote inside quotes yields one literal quote, and CR,
// LF or CRLF end a row. Rows whose cells are all blank are dropped. The text
// and every cell are trimmed of whitespace and byte-order marks.
func Parse(text string) []Row {
	text = Trim(text)

	var (
		rows    []Row
		current Row
		value   strings.Builder
		quoted  bool
	)

	flushCell := func() {
		current = append(current, value.String())
		value.Reset()
	}
	flushRow := func() {
		flushCell()
		rows = append(rows, current)
		current = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if quoted && i+1 < len(text) && text[i+1] == '"' {
				value.WriteByte('"')
				i++
			} else {
				quoted = !quoted
			}
		case ch == ',' && !quoted:
			flushCell()
		case (ch == '\n' || ch == '\r') && !quoted:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			flushRow()
		default:
			value.WriteByte(ch)
		}
	}
	if value.Len() > 0 || len(current) > 0 {
		flushRow()
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		blank := true
		for i, cell := range row {
			row[i] = Trim(cell)
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// Trim strips leading and trailing whitespace, including U+FEFF.
func Trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == byteOrderMark
	})
}

// Encode renders rows back to CSV, quoting cells that need it.
func Encode(rows []Row) string {
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(cell, ",\"\r\n") {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
				b.WriteByte('"')
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
