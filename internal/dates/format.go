package dates

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is shown when a date cannot be displayed.
const Placeholder = "-"

// FormatDDMMYYYY renders the UTC calendar day of t.
func FormatDDMMYYYY(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// FinishDate displays the finish date column. Only strict D/M/YYYY values are
// shown; everything else becomes the placeholder.
func FinishDate(value string) string {
	t, ok := ParseDDMMYYYY(value)
	if !ok {
		return Placeholder
	}
	return FormatDDMMYYYY(t)
}

// Formatter renders dates for display in a fixed time zone.
type Formatter struct {
	loc *time.Location
}

func NewFormatter(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{loc: loc}
}

func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// UIDate renders t as DD/MM/YYYY in the formatter's zone.
func (f Formatter) UIDate(t time.Time) string {
	return t.In(f.Location()).Format("02/01/2006")
}

// DayKey is the YYYY-MM-DD calendar day of t in the formatter's zone.
func (f Formatter) DayKey(t time.Time) string {
	return t.In(f.Location()).Format("2006-01-02")
}

// TrackerDate displays an order date cell. Tried in order: strict D/M/YYYY,
// a compact YYYYMMDDHHmm[ss] timestamp (12+ digits), a compact YYYYMMDD date,
// then the lenient sheet chain. Unparseable input is returned trimmed.
func (f Formatter) TrackerDate(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Placeholder
	}
	if t, ok := ParseDDMMYYYY(raw); ok {
		return FormatDDMMYYYY(t)
	}

	digits := onlyDigits(raw)
	switch {
	case len(digits) >= 12:
		second := "00"
		if len(digits) >= 14 {
			second = digits[12:14]
		}
		return fmt.Sprintf("%s/%s/%s %s:%s:%s",
			digits[6:8], digits[4:6], digits[0:4], digits[8:10], digits[10:12], second)
	case len(digits) == 8:
		return fmt.Sprintf("%s/%s/%s", digits[6:8], digits[4:6], digits[0:4])
	}

	if t, ok := ParseSheetDate(raw); ok {
		return f.UIDate(t)
	}
	return raw
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
