// Package engine computes cost projections over a plan snapshot: per-item
// yearly costs, the year-by-year schedule, summary aggregates, the
// quality-control reconciliation, scenario comparison, and sensitivity
// analysis. The engine holds no state beyond its logger; every computation
// is a pure function of the plan passed in.
package engine

import (
	"math"

	"go.uber.org/zap"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/mathutil"
)

// Engine computes projections for a plan.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates an engine with the given logger. If logger is nil, a
// no-op logger is used to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// CostOf returns the inflation-adjusted cost attributable to the item in the
// given calendar year, or zero when the item does not apply that year.
// Results are rounded to cents at the point of computation; the $1
// reconciliation tolerance depends on this per-value rounding.
//
// An item with an unset unit cost or frequency contributes zero rather than
// failing, so one partially-specified item cannot abort a schedule build.
func (e *Engine) CostOf(item plan.Item, year int, settings plan.ProjectionSettings) float64 {
	yearsFromBase := year - settings.BaseYear
	if yearsFromBase < 0 {
		return 0
	}

	baseAmount, ok := item.BaseAmount()
	if !ok {
		return 0
	}

	switch timing := item.Timing.(type) {
	case plan.OneTime:
		if year != timing.Year {
			return 0
		}
		// One-time costs inflate from the base year to the occurrence
		// year, never backwards.
		exponent := timing.Year - settings.BaseYear
		if exponent < 0 {
			exponent = 0
		}
		return mathutil.Round(baseAmount * inflationFactor(item.InflationRate, exponent))
	case plan.Discrete:
		if !containsYear(timing.Years, year) {
			return 0
		}
		return mathutil.Round(baseAmount * inflationFactor(item.InflationRate, yearsFromBase))
	case plan.Distributed:
		if year < timing.StartYear || float64(year-timing.StartYear) >= timing.PeriodYears {
			return 0
		}
		return mathutil.Round(baseAmount * inflationFactor(item.InflationRate, yearsFromBase))
	case plan.Recurring:
		start, end := item.Window(settings)
		if year < start || year > end {
			return 0
		}
		return mathutil.Round(baseAmount * inflationFactor(item.InflationRate, yearsFromBase))
	}
	return 0
}

// PresentValue discounts a nominal amount back to the base year. Disabled
// discounting is a first-class mode: when the evaluee's master switch is
// off the amount is returned unchanged, as it is in the base year itself.
func (e *Engine) PresentValue(amount float64, yearsFromBase int, settings plan.ProjectionSettings, evaluee plan.Evaluee) float64 {
	if !evaluee.DiscountCalculations {
		return amount
	}
	if yearsFromBase == 0 {
		return amount
	}
	discountFactor := math.Pow(1+settings.DiscountRate, float64(yearsFromBase))
	return mathutil.Round(amount / discountFactor)
}

func inflationFactor(rate float64, years int) float64 {
	return math.Pow(1+rate, float64(years))
}

func containsYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}
