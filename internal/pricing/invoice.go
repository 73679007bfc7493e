package pricing

import (
	"github.com/shopspring/decimal"
)

// RevisionFee is the charge for revisions beyond the package allowance.
type RevisionFee struct {
	Used       int     `json:"used"`
	Included   float64 `json:"included"`
	ExtraCount float64 `json:"extra_count"`
	Percent    float64 `json:"percent"`
	Fee        int64   `json:"fee"`
}

// ComputeRevisionFee charges Percent of subtotal for every revision above the
// included quota, rounded to the nearest rupiah. A zero or negative percentage
// never charges.
func ComputeRevisionFee(revisionCount int, pkg Package, subtotal int64) RevisionFee {
	included := pkg.Included()
	extra := decimal.NewFromInt(int64(revisionCount)).Sub(included)
	if extra.IsNegative() {
		extra = decimal.Zero
	}
	percent := pkg.ExtraRevisionPercent

	fee := decimal.Zero
	if extra.IsPositive() && percent.IsPositive() {
		fee = decimal.NewFromInt(subtotal).Mul(percent.Div(hundred)).Mul(extra).Round(0)
	}

	return RevisionFee{
		Used:       revisionCount,
		Included:   included.InexactFloat64(),
		ExtraCount: extra.InexactFloat64(),
		Percent:    percent.InexactFloat64(),
		Fee:        fee.IntPart(),
	}
}

// Invoice is the full breakdown for one decoded order.
type Invoice struct {
	PackageID   string      `json:"package_id"`
	PackageName string      `json:"package_name"`
	Duration    float64     `json:"duration"`
	Deadline    float64     `json:"deadline"`
	Calculation Calculation `json:"calculation"`
	Subtotal    int64       `json:"subtotal"`
	Revision    RevisionFee `json:"revision"`
	Total       int64       `json:"total"`
}

// ComputeInvoice prices pkg for the decoded duration/deadline and adds the
// revision fee. The caller resolves pkg first; a missing package never
// reaches this function.
func ComputeInvoice(calc Calculator, pkg Package, prices Prices, promo Promo, duration, deadline float64, revisionCount int) Invoice {
	c := calc.CalcTotal(pkg, prices, promo, duration, deadline)
	subtotal := c.Subtotal()
	revision := ComputeRevisionFee(revisionCount, pkg, subtotal)

	return Invoice{
		PackageID:   pkg.ID.String(),
		PackageName: pkg.Name,
		Duration:    duration,
		Deadline:    deadline,
		Calculation: c,
		Subtotal:    subtotal,
		Revision:    revision,
		Total:       subtotal + revision.Fee,
	}
}
