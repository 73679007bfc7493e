package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatIDR renders rupiah with dot thousands separators: Rp 150.000.
func FormatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}

// FormatPercent keeps at most two decimals and drops trailing zeros.
func FormatPercent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "0"
	}
	return decimal.NewFromFloat(value).Round(2).String()
}

// FormatMinutes renders a duration in minutes.
func FormatMinutes(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "-"
	}
	return strconv.FormatFloat(minutes, 'f', -1, 64) + " menit"
}

// FormatDays renders a deadline, or "-" when there is none.
func FormatDays(days float64) string {
	if days == 0 || math.IsNaN(days) || math.IsInf(days, 0) {
		return "-"
	}
	return strconv.FormatFloat(days, 'f', -1, 64) + " hari"
}
