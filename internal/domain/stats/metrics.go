package stats

import "github.com/shopspring/decimal"

// Trend labels derived from the sign of a growth rate
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

var hundred = decimal.NewFromInt(100)

// GrowthRate computes the percentage change from previous to current.
// A zero baseline cannot be divided by: growth from zero to any positive
// value reports as a capped 100, zero to zero as 0.
func GrowthRate(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.GreaterThan(decimal.Zero) {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}

// GrowthRateCounts computes the growth rate between two counts
func GrowthRateCounts(previous, current int64) decimal.Decimal {
	return GrowthRate(decimal.NewFromInt(previous), decimal.NewFromInt(current))
}

// Trend maps a growth rate to its trend label
func Trend(rate decimal.Decimal) string {
	switch rate.Sign() {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendStable
	}
}

// Rate computes part/whole as a percentage, reporting 0 for an empty
// denominator (an empty period has no meaningful rate)
func Rate(part, whole int64) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(whole)).Mul(hundred)
}

// AverageOrderValue computes revenue per order, 0 when there are no orders
func AverageOrderValue(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders <= 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(orders))
}

// AverageDailyRevenue computes revenue per calendar day over an inclusive
// day count, 0 when the range is empty
func AverageDailyRevenue(revenue decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(days)))
}

// Round2 rounds a metric to two decimal places at the point of external
// exposure. Intermediate calculations stay unrounded so derived metrics
// do not compound rounding error.
func Round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
