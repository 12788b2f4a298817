package engine

import (
	"fmt"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/mathutil"
)

// CategorySummary is the rollup for one category.
type CategorySummary struct {
	Name         string
	Nominal      float64
	PresentValue float64
}

// Summary holds the scalar aggregates for one scenario.
type Summary struct {
	Scenario          string
	TotalNominal      float64
	TotalPresentValue float64
	// AverageAnnual divides by the number of years with a nonzero total,
	// so trailing zero-cost years do not dilute the average.
	AverageAnnual    float64
	ProjectionPeriod string
	DiscountRate     float64
	Categories       []CategorySummary
}

// Summarize collapses the schedule into scalar statistics. Category totals
// are recomputed by iterating categories and years directly rather than by
// reading the built schedule; the independence is deliberate and is what
// Validate cross-checks against.
func (e *Engine) Summarize(scenario plan.Scenario, evaluee plan.Evaluee) Summary {
	settings := scenario.Settings
	schedule := e.BuildSchedule(scenario, evaluee)

	summary := Summary{
		Scenario:     scenario.Name,
		DiscountRate: settings.DiscountRate,
		ProjectionPeriod: fmt.Sprintf("%d-%d (%.1f years)",
			settings.BaseYear, settings.FinalYear(), settings.ProjectionYears),
	}

	nonZeroYears := 0
	for _, row := range schedule.Rows {
		summary.TotalNominal += row.NominalTotal
		if !mathutil.IsZero(row.NominalTotal) {
			nonZeroYears++
		}
		if schedule.HasPresentValue {
			summary.TotalPresentValue += row.PresentValue
		}
	}
	summary.TotalNominal = mathutil.Round(summary.TotalNominal)
	summary.TotalPresentValue = mathutil.Round(summary.TotalPresentValue)
	if evaluee.DiscountCalculations && !schedule.HasPresentValue {
		// Discounting enabled with a zero rate discounts nothing.
		summary.TotalPresentValue = summary.TotalNominal
	}
	if nonZeroYears > 0 {
		summary.AverageAnnual = mathutil.Round(summary.TotalNominal / float64(nonZeroYears))
	}

	for _, category := range scenario.Categories {
		rollup := CategorySummary{Name: category.Name}
		for offset := 0; offset < settings.ScheduleYears(); offset++ {
			year := settings.BaseYear + offset
			for _, item := range category.Items {
				cost := e.CostOf(item, year, settings)
				rollup.Nominal += cost
				if evaluee.DiscountCalculations {
					rollup.PresentValue += e.PresentValue(cost, offset, settings, evaluee)
				}
			}
		}
		rollup.Nominal = mathutil.Round(rollup.Nominal)
		rollup.PresentValue = mathutil.Round(rollup.PresentValue)
		summary.Categories = append(summary.Categories, rollup)
	}

	return summary
}
