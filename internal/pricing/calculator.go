package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculation is the itemized base/overtime/deadline/buffer breakdown.
type Calculation struct {
	BaseFinal    int64 `json:"base_final"`
	OverMin      int64 `json:"over_min"`
	OverRate     int64 `json:"over_rate"`
	OverCost     int64 `json:"over_cost"`
	SurchargeVal int64 `json:"surcharge_val"`
	BufVal       int64 `json:"buf_val"`
}

// Subtotal sums every component before the revision fee.
func (c Calculation) Subtotal() int64 {
	return c.BaseFinal + c.OverCost + c.SurchargeVal + c.BufVal
}

// Calculator produces the package arithmetic for a duration (minutes) and a
// deadline (days).
type Calculator interface {
	CalcTotal(pkg Package, prices Prices, promo Promo, duration, deadline float64) Calculation
}

type calculator struct{}

func NewCalculator() Calculator {
	return calculator{}
}

func (calculator) CalcTotal(pkg Package, prices Prices, promo Promo, duration, deadline float64) Calculation {
	base := pkg.Price
	if promo.appliesTo(pkg.ID) {
		base = base.Sub(base.Mul(promo.DiscountPercent).Div(hundred)).Sub(promo.DiscountAmount)
	}
	if base.IsNegative() {
		base = decimal.Zero
	}
	base = base.Round(0)

	free := decimal.NewFromInt(DefaultFreeMinutes)
	switch {
	case pkg.FreeMinutes != nil:
		free = *pkg.FreeMinutes
	case prices.FreeMinutes != nil:
		free = *prices.FreeMinutes
	}
	overMin := decimal.Zero
	if over := decimal.NewFromFloat(duration).Sub(free); over.IsPositive() {
		overMin = over.Ceil()
	}
	overRate := pkg.OvertimeRate.Round(0)
	overCost := overMin.Mul(overRate)

	tiers := pkg.DeadlineTiers
	if len(tiers) == 0 {
		tiers = prices.DeadlineTiers
	}
	surcharge := decimal.Zero
	if tier, ok := pickTier(tiers, deadline); ok {
		surcharge = tier.Amount.Add(base.Mul(tier.Percent).Div(hundred)).Round(0)
	}

	buffer := prices.BufferFee
	if pkg.BufferFee != nil {
		buffer = *pkg.BufferFee
	}

	return Calculation{
		BaseFinal:    base.IntPart(),
		OverMin:      overMin.IntPart(),
		OverRate:     overRate.IntPart(),
		OverCost:     overCost.IntPart(),
		SurchargeVal: surcharge.IntPart(),
		BufVal:       buffer.Round(0).IntPart(),
	}
}

// pickTier returns the tightest tier covering deadline days. A deadline of
// zero or less means no rush and no surcharge.
func pickTier(tiers []DeadlineTier, deadline float64) (DeadlineTier, bool) {
	if deadline <= 0 || len(tiers) == 0 {
		return DeadlineTier{}, false
	}
	sorted := make([]DeadlineTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxDays.LessThan(sorted[j].MaxDays)
	})
	days := decimal.NewFromFloat(deadline)
	for _, tier := range sorted {
		if days.LessThanOrEqual(tier.MaxDays) {
			return tier, true
		}
	}
	return DeadlineTier{}, false
}
