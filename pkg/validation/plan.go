// Package validation provides plan validation utilities shared by the CLI
// and the HTTP API. Everything here is advisory: warnings surface to the
// operator, they never block a computation.
package validation

import (
	"fmt"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/constants"
)

// ValidatePlan scans a constructed plan and returns warnings for values
// that compute fine but usually indicate data-entry problems.
func ValidatePlan(p *plan.Plan) []string {
	var warnings []string

	if len(p.Scenarios) == 0 {
		return append(warnings, "plan has no scenarios")
	}
	if p.BaselineScenario() != nil && !p.BaselineScenario().Baseline {
		warnings = append(warnings, "plan has no scenario flagged baseline; using the first scenario for comparisons")
	}

	for _, scenario := range p.Scenarios {
		warnings = append(warnings, validateScenario(scenario)...)
	}

	return warnings
}

func validateScenario(scenario plan.Scenario) []string {
	var warnings []string

	settings := scenario.Settings
	if settings.DiscountRate > constants.TypicalDiscountCeiling {
		warnings = append(warnings, fmt.Sprintf(
			"Scenario '%s' discount rate %.1f%% is above the typical range",
			scenario.Name, settings.DiscountRate*constants.PercentageMultiplier))
	}

	for _, category := range scenario.Categories {
		if len(category.Items) == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Scenario '%s' category '%s' has no items", scenario.Name, category.Name))
		}
		for _, item := range category.Items {
			warnings = append(warnings, validateItem(scenario, category, item)...)
		}
	}

	return warnings
}

func validateItem(scenario plan.Scenario, category plan.Category, item plan.Item) []string {
	var warnings []string
	label := fmt.Sprintf("Scenario '%s' item '%s: %s'", scenario.Name, category.Name, item.Name)

	if item.InflationRate > constants.TypicalInflationCeiling {
		warnings = append(warnings, fmt.Sprintf(
			"%s inflation rate %.1f%% is above the typical range",
			label, item.InflationRate*constants.PercentageMultiplier))
	}
	if item.UnitCost != nil && *item.UnitCost == 0 {
		warnings = append(warnings, fmt.Sprintf("%s has a zero unit cost", label))
	}
	if item.FrequencyPerYear != nil && *item.FrequencyPerYear == 0 {
		warnings = append(warnings, fmt.Sprintf("%s has a zero frequency and never occurs", label))
	}

	// Items whose window misses the projection entirely never contribute.
	start, end := item.Window(scenario.Settings)
	if end < scenario.Settings.BaseYear {
		warnings = append(warnings, fmt.Sprintf(
			"%s ends in %d, before the base year %d", label, end, scenario.Settings.BaseYear))
	}
	if start > scenario.Settings.FinalYear() {
		warnings = append(warnings, fmt.Sprintf(
			"%s starts in %d, after the projection window ends in %d",
			label, start, scenario.Settings.FinalYear()))
	}

	return warnings
}
