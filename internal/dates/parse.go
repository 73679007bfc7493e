// Package dates parses and formats the date shapes found in order sheet cells
// and decoded order codes. Each consumer has its own fallback chain; the
// chains are lists of Strategy values and intentionally not shared.
package dates

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Strategy attempts to read a calendar date from raw text.
type Strategy func(raw string) (time.Time, bool)

var (
	isoPrefix      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	dayFirstPrefix = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})`)
	strictDMY      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// SheetStrategies is the lenient chain used for sheet cells.
var SheetStrategies = []Strategy{ParseISOPrefix, ParseDayFirst, ParseGeneric}

// maxJSMillis bounds the representable instant range (±100,000,000 days).
const maxJSMillis = 8.64e15

func run(chain []Strategy, value string) (time.Time, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, false
	}
	for _, strategy := range chain {
		if t, ok := strategy(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseSheetDate reads YYYY-M-D, D/M/Y (also with . or -) or any generic
// date text. Calendar dates are returned at UTC midnight.
func ParseSheetDate(value string) (time.Time, bool) {
	return run(SheetStrategies, value)
}

// ParseISOPrefix matches a leading YYYY-M-D.
func ParseISOPrefix(raw string) (time.Time, bool) {
	m := isoPrefix.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	return utcDate(atoi(m[1]), atoi(m[2]), atoi(m[3])), true
}

// ParseDayFirst matches a leading D/M/YYYY, D.M.YYYY or D-M-YYYY.
func ParseDayFirst(raw string) (time.Time, bool) {
	m := dayFirstPrefix.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	return utcDate(atoi(m[3]), atoi(m[2]), atoi(m[1])), true
}

// ParseGeneric accepts whatever dateparse recognizes, interpreted in UTC.
func ParseGeneric(raw string) (time.Time, bool) {
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ParseDDMMYYYY is the strict parser for the finish date column: the whole
// value must be D/M/YYYY and must name a real calendar day.
func ParseDDMMYYYY(value string) (time.Time, bool) {
	raw := strings.TrimSpace(value)
	m := strictDMY.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1000 {
		return time.Time{}, false
	}
	t := utcDate(year, month, day)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseDecodedOrderDate reads the orderDate carried by a decoded code. Numbers
// are Unix seconds below 1e12 and milliseconds otherwise; anything else goes
// through the sheet chain.
func ParseDecodedOrderDate(value any) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	if n, ok := number(value); ok {
		ms := n
		if n < 1e12 {
			ms = n * 1000
		}
		if !math.IsNaN(ms) && math.Abs(ms) <= maxJSMillis {
			return time.UnixMilli(int64(ms)).UTC(), true
		}
	}
	return ParseSheetDate(fmt.Sprint(value))
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func utcDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
