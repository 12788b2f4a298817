package engine

import (
	"fmt"
	"math"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/mathutil"
)

// SensitivityOptions controls which perturbations to evaluate.
type SensitivityOptions struct {
	// DiscountRateOffsets are added to the scenario's discount rate, one
	// result per offset. Offsets that would push the rate negative are
	// clamped to zero.
	DiscountRateOffsets []float64
}

// DefaultSensitivityOptions evaluates the discount rate one point up and
// down.
func DefaultSensitivityOptions() SensitivityOptions {
	return SensitivityOptions{DiscountRateOffsets: []float64{-0.01, 0.01}}
}

// SensitivityResult is the scenario's totals under one perturbation.
type SensitivityResult struct {
	Label             string
	TotalNominal      float64
	TotalPresentValue float64
	// NominalDeltaPct is the percent change of the nominal total against
	// the unperturbed scenario.
	NominalDeltaPct float64
	// PresentValueDeltaPct is the percent change of the present value
	// total against the unperturbed scenario.
	PresentValueDeltaPct float64
}

// SensitivityReport quantifies how the scenario totals move under discount
// rate shifts and under whole-year horizon alternatives. The horizon
// section measures the cost of the non-prorated fractional final year: for
// a fractional horizon the floor and ceiling cases bracket the reported
// total.
type SensitivityReport struct {
	Scenario     string
	DiscountRate []SensitivityResult
	Horizon      []SensitivityResult
}

// Sensitivity reruns the summary under perturbed settings and reports the
// movement of the totals.
func (e *Engine) Sensitivity(scenario plan.Scenario, evaluee plan.Evaluee, opts SensitivityOptions) SensitivityReport {
	report := SensitivityReport{Scenario: scenario.Name}
	base := e.Summarize(scenario, evaluee)

	for _, offset := range opts.DiscountRateOffsets {
		perturbed := scenario
		perturbed.Settings.DiscountRate = scenario.Settings.DiscountRate + offset
		if perturbed.Settings.DiscountRate < 0 {
			perturbed.Settings.DiscountRate = 0
		}
		summary := e.Summarize(perturbed, evaluee)
		report.DiscountRate = append(report.DiscountRate, sensitivityResult(
			fmt.Sprintf("discount rate %.1f%%", perturbed.Settings.DiscountRate*100),
			summary, base))
	}

	floorYears := math.Floor(scenario.Settings.ProjectionYears)
	ceilYears := math.Ceil(scenario.Settings.ProjectionYears)
	horizons := []float64{floorYears}
	if ceilYears != floorYears {
		horizons = append(horizons, scenario.Settings.ProjectionYears, ceilYears)
	}
	for _, years := range horizons {
		perturbed := scenario
		perturbed.Settings.ProjectionYears = years
		summary := e.Summarize(perturbed, evaluee)
		report.Horizon = append(report.Horizon, sensitivityResult(
			fmt.Sprintf("%.1f year horizon", years), summary, base))
	}

	return report
}

func sensitivityResult(label string, summary, base Summary) SensitivityResult {
	return SensitivityResult{
		Label:             label,
		TotalNominal:      summary.TotalNominal,
		TotalPresentValue: summary.TotalPresentValue,
		NominalDeltaPct: mathutil.CalculatePercentage(
			summary.TotalNominal-base.TotalNominal, base.TotalNominal),
		PresentValueDeltaPct: mathutil.CalculatePercentage(
			summary.TotalPresentValue-base.TotalPresentValue, base.TotalPresentValue),
	}
}
