package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDDMMYYYY(t *testing.T) {
	leap, ok := ParseDDMMYYYY("29/02/2024")
	require.True(t, ok)
	assert.Equal(t, time.February, leap.Month())
	assert.Equal(t, 29, leap.Day())
	assert.Equal(t, time.UTC, leap.Location())

	rejected := []string{"31/02/2024", "29/02/2023", "32/01/2024", "00/01/2024", "01/13/2024", "01/01/0999", "5-1-2024", "2024-01-05", "5/1/2024 10:00", ""}
	for _, in := range rejected {
		_, ok := ParseDDMMYYYY(in)
		assert.False(t, ok, "input %q", in)
	}

	got, ok := ParseDDMMYYYY(" 5/1/2024 ")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 5), got)
}

func TestSheetStrategies(t *testing.T) {
	got, ok := ParseISOPrefix("2024-1-5T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 5), got)

	_, ok = ParseISOPrefix("05/01/2024")
	assert.False(t, ok)

	got, ok = ParseDayFirst("05.01.2024 extra")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 5), got)

	_, ok = ParseDayFirst("2024-01-05")
	assert.False(t, ok)

	got, ok = ParseGeneric("January 5, 2024")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 5), got)

	_, ok = ParseGeneric("not a date")
	assert.False(t, ok)
}

func TestParseSheetDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "2024-1-5", want: day(2024, time.January, 5), ok: true},
		{in: "2024-01-05 14:30", want: day(2024, time.January, 5), ok: true},
		{in: "5/1/2024", want: day(2024, time.January, 5), ok: true},
		{in: "5-1-2024", want: day(2024, time.January, 5), ok: true},
		{in: "31/02/2024", want: day(2024, time.March, 2), ok: true},
		{in: "January 5, 2024", want: day(2024, time.January, 5), ok: true},
		{in: "belum", ok: false},
		{in: "   ", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseSheetDate(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestParseDecodedOrderDate(t *testing.T) {
	newYear := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	got, ok := ParseDecodedOrderDate(json.Number("1704067200"))
	require.True(t, ok)
	assert.Equal(t, newYear, got)

	got, ok = ParseDecodedOrderDate(json.Number("1704067200000"))
	require.True(t, ok)
	assert.Equal(t, newYear, got)

	got, ok = ParseDecodedOrderDate(float64(1704067200))
	require.True(t, ok)
	assert.Equal(t, newYear, got)

	got, ok = ParseDecodedOrderDate("05/01/2024")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.January, 5), got)

	_, ok = ParseDecodedOrderDate(nil)
	assert.False(t, ok)

	_, ok = ParseDecodedOrderDate("kapan-kapan")
	assert.False(t, ok)
}

func TestTrackerDate(t *testing.T) {
	f := NewFormatter(wib)
	tests := []struct {
		in   string
		want string
	}{
		{in: "5/1/2024", want: "05/01/2024"},
		{in: "20240105143000", want: "05/01/2024 14:30:00"},
		{in: "202401051430", want: "05/01/2024 14:30:00"},
		{in: "2024-01-05 14:30:15", want: "05/01/2024 14:30:15"},
		{in: "20240105", want: "05/01/2024"},
		{in: "2024-01-05", want: "05/01/2024"},
		{in: "January 5, 2024", want: "05/01/2024"},
		{in: " menunggu ", want: "menunggu"},
		{in: "", want: Placeholder},
		{in: "   ", want: Placeholder},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.TrackerDate(tt.in), "input %q", tt.in)
	}
}

func TestFinishDate(t *testing.T) {
	assert.Equal(t, "05/01/2024", FinishDate("5/1/2024"))
	assert.Equal(t, Placeholder, FinishDate("31/02/2024"))
	assert.Equal(t, Placeholder, FinishDate("2024-01-05"))
	assert.Equal(t, Placeholder, FinishDate(""))
}

func TestFormatterUsesZone(t *testing.T) {
	evening := time.Date(2024, time.January, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "02/01/2024", NewFormatter(wib).UIDate(evening))
	assert.Equal(t, "01/01/2024", NewFormatter(nil).UIDate(evening))
	assert.Equal(t, "2024-01-02", NewFormatter(wib).DayKey(evening))
}
