package engine

import (
	"fmt"

	"go.uber.org/zap"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/constants"
	"lifecare-forecast/pkg/format"
	"lifecare-forecast/pkg/mathutil"
)

// Finding severities. Findings are advisory and never block computation.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Trend classifications for the projection horizon.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Finding is one advisory observation from the validation scan.
type Finding struct {
	Severity string
	Message  string
}

// ItemBreakdown is one item's lifetime totals, for audit output.
type ItemBreakdown struct {
	Category     string
	Item         string
	Nominal      float64
	PresentValue float64
}

// ValidationReport is the result of the quality-control reconciliation. The
// cross-footing check recomputes the total cost two independent ways and a
// discrepancy beyond the tolerance signals an implementation bug, not
// floating-point drift.
type ValidationReport struct {
	Scenario    string
	Passed      bool
	Discrepancy float64
	ByItemTotal float64 // sum of each item's lifetime cost (column sums)
	ByYearTotal float64 // sum of each year's total (row sums)
	Breakdown   []ItemBreakdown
	Findings    []Finding
	Trend       string
}

// Validate reconciles the cost matrix both ways, scans the scenario for
// data-integrity problems, and classifies the cost trend. Reconciliation
// failure is reported, never raised: a discrepancy should reach a human
// reviewer, not crash an export in progress.
func (e *Engine) Validate(scenario plan.Scenario, evaluee plan.Evaluee) ValidationReport {
	settings := scenario.Settings
	report := ValidationReport{Scenario: scenario.Name}

	// Column path: each item's lifetime cost summed across all years.
	for _, category := range scenario.Categories {
		for _, item := range category.Items {
			entry := ItemBreakdown{Category: category.Name, Item: item.Name}
			for offset := 0; offset < settings.ScheduleYears(); offset++ {
				year := settings.BaseYear + offset
				cost := e.CostOf(item, year, settings)
				entry.Nominal += cost
				if evaluee.DiscountCalculations {
					entry.PresentValue += e.PresentValue(cost, offset, settings, evaluee)
				}
			}
			entry.Nominal = mathutil.Round(entry.Nominal)
			entry.PresentValue = mathutil.Round(entry.PresentValue)
			report.Breakdown = append(report.Breakdown, entry)
			report.ByItemTotal += entry.Nominal
		}
	}
	report.ByItemTotal = mathutil.Round(report.ByItemTotal)

	// Row path: each year's total summed across all items.
	schedule := e.BuildSchedule(scenario, evaluee)
	yearTotals := make([]float64, len(schedule.Rows))
	for i, row := range schedule.Rows {
		yearTotals[i] = row.NominalTotal
		report.ByYearTotal += row.NominalTotal
	}
	report.ByYearTotal = mathutil.Round(report.ByYearTotal)

	report.Discrepancy = mathutil.Round(abs(report.ByItemTotal - report.ByYearTotal))
	report.Passed = report.Discrepancy < constants.ReconciliationTolerance
	if !report.Passed {
		e.logger.Warn("cost matrix reconciliation failed",
			zap.String("op", "engine.Validate"),
			zap.String("scenario", scenario.Name),
			zap.Float64("byItemTotal", report.ByItemTotal),
			zap.Float64("byYearTotal", report.ByYearTotal),
			zap.Float64("discrepancy", report.Discrepancy),
		)
	}

	report.Findings = append(report.Findings, e.integrityFindings(scenario)...)
	report.Findings = append(report.Findings, reasonablenessFindings(settings.BaseYear, yearTotals)...)
	report.Trend = classifyTrend(yearTotals)

	return report
}

// integrityFindings flags item and settings values that compute fine but
// usually indicate data-entry problems.
func (e *Engine) integrityFindings(scenario plan.Scenario) []Finding {
	var findings []Finding

	if scenario.Settings.DiscountRate > constants.TypicalDiscountCeiling {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("discount rate %s is above the typical range",
				format.Percent(scenario.Settings.DiscountRate)),
		})
	}

	for _, category := range scenario.Categories {
		for _, item := range category.Items {
			label := fmt.Sprintf("%s: %s", category.Name, item.Name)
			if item.UnitCost == nil {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s has no unit cost and contributes zero", label),
				})
			} else if *item.UnitCost <= 0 {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s has a non-positive unit cost", label),
				})
			}
			if item.FrequencyPerYear == nil {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s has no frequency and contributes zero", label),
				})
			} else if *item.FrequencyPerYear <= 0 {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s has a non-positive frequency", label),
				})
			}
			if item.InflationRate > constants.TypicalInflationCeiling {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Message: fmt.Sprintf("%s inflation rate %s is above the typical range",
						label, format.Percent(item.InflationRate)),
				})
			}
		}
	}

	return findings
}

// reasonablenessFindings looks at the distribution of year totals: outlier
// years more than 3 sigma above the mean, and volatile year-over-year
// growth.
func reasonablenessFindings(baseYear int, yearTotals []float64) []Finding {
	var findings []Finding
	if len(yearTotals) == 0 {
		return findings
	}

	mean := mathutil.Mean(yearTotals)
	stdDev := mathutil.StdDev(yearTotals)
	if stdDev > 0 {
		for i, total := range yearTotals {
			if total > mean+constants.OutlierSigma*stdDev {
				findings = append(findings, Finding{
					Severity: SeverityInfo,
					Message: fmt.Sprintf("year %d total %s is more than %.0f sigma above the mean %s",
						baseYear+i, format.Currency(total), constants.OutlierSigma, format.Currency(mean)),
				})
			}
		}
	}

	var growthRates []float64
	for i := 1; i < len(yearTotals); i++ {
		if yearTotals[i-1] > 0 {
			growthRates = append(growthRates, (yearTotals[i]-yearTotals[i-1])/yearTotals[i-1])
		}
	}
	if volatility := mathutil.StdDev(growthRates); volatility > constants.GrowthVolatilityCeiling {
		findings = append(findings, Finding{
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("year-over-year growth is volatile (stddev %.2f)", volatility),
		})
	}

	return findings
}

// classifyTrend compares the average of the first and last thirds of the
// horizon.
func classifyTrend(yearTotals []float64) string {
	third := len(yearTotals) / 3
	if third == 0 {
		return TrendStable
	}
	early := mathutil.Mean(yearTotals[:third])
	late := mathutil.Mean(yearTotals[len(yearTotals)-third:])
	switch {
	case late > early*1.1:
		return TrendIncreasing
	case late < early*0.9:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func abs(val float64) float64 {
	if val < 0 {
		return -val
	}
	return val
}
