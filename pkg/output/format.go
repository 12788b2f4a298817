// Package output provides utilities for formatting and displaying projection
// results.
package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lifecare-forecast/internal/engine"
	"lifecare-forecast/pkg/format"
)

// ScenarioResult bundles everything the engine computed for one scenario.
type ScenarioResult struct {
	Schedule   engine.Schedule
	Summary    engine.Summary
	Validation engine.ValidationReport
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []ScenarioResult) {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		fmt.Printf("--- Results for scenario %s ---\n", result.Summary.Scenario)
		fmt.Printf("Projection period: %s\n", result.Summary.ProjectionPeriod)
		_, _ = p.Printf("Total cost (nominal): $%.2f\n", result.Summary.TotalNominal)
		if result.Summary.TotalPresentValue > 0 {
			_, _ = p.Printf("Total cost (present value @ %s): $%.2f\n",
				format.Percent(result.Summary.DiscountRate), result.Summary.TotalPresentValue)
		}
		_, _ = p.Printf("Average annual cost: $%.2f\n", result.Summary.AverageAnnual)
		fmt.Printf("Cost trend: %s\n", result.Validation.Trend)

		fmt.Printf("\nCategory        | Nominal         | Present Value\n")
		fmt.Printf("________        | _______         | _____________\n")
		for _, category := range result.Summary.Categories {
			_, _ = p.Printf("%-15s | $%.2f | $%.2f\n", category.Name, category.Nominal, category.PresentValue)
		}

		fmt.Printf("\nYear | Age  | Nominal Total | Present Value\n")
		fmt.Printf("____ | ___  | _____________ | _____________\n")
		for _, row := range result.Schedule.Rows {
			_, _ = p.Printf("%d | %.1f | $%.2f | $%.2f\n", row.Year, row.Age, row.NominalTotal, row.PresentValue)
		}

		printValidation(result.Validation)
		if len(results) > 1 {
			fmt.Printf("\n")
		}
	}
}

func printValidation(report engine.ValidationReport) {
	status := "PASSED"
	if !report.Passed {
		status = "FAILED"
	}
	fmt.Printf("\nReconciliation %s: by-item total %s, by-year total %s, discrepancy %s\n",
		status,
		format.Currency(report.ByItemTotal),
		format.Currency(report.ByYearTotal),
		format.Currency(report.Discrepancy))
	for _, finding := range report.Findings {
		fmt.Printf("  [%s] %s\n", finding.Severity, finding.Message)
	}
}

// CsvFormat outputs the full cost matrix in comma-separated value format, one
// column per item.
func CsvFormat(results []ScenarioResult) {
	for i, result := range results {
		if i > 0 {
			fmt.Printf("\n")
		}
		fmt.Printf(`"scenario","%s"`+"\n", csvEscape(result.Summary.Scenario))
		fmt.Printf(`"year","age"`)
		for _, column := range result.Schedule.Columns {
			fmt.Printf(`,"%s"`, csvEscape(column.Label))
		}
		fmt.Printf(`,"nominal total"`)
		if result.Schedule.HasPresentValue {
			fmt.Printf(`,"present value"`)
		}
		fmt.Printf("\n")
		for _, row := range result.Schedule.Rows {
			fmt.Printf(`"%d","%.1f"`, row.Year, row.Age)
			for _, cost := range row.Costs {
				fmt.Printf(`,"%.2f"`, cost)
			}
			fmt.Printf(`,"%.2f"`, row.NominalTotal)
			if result.Schedule.HasPresentValue {
				fmt.Printf(`,"%.2f"`, row.PresentValue)
			}
			fmt.Printf("\n")
		}
	}
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}

// PrettyComparison outputs each scenario's totals and variance against the
// baseline.
func PrettyComparison(comparison engine.Comparison) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Scenario comparison (baseline: %s) ---\n", comparison.Baseline)
	fmt.Printf("Scenario             | Nominal         | Present Value   | Delta           | Delta %%\n")
	fmt.Printf("________             | _______         | _____________   | _____           | _______\n")
	for _, variance := range comparison.Scenarios {
		marker := ""
		if variance.Baseline {
			marker = " (baseline)"
		}
		_, _ = p.Printf("%-20s | $%.2f | $%.2f | $%.2f | %.1f%%%s\n",
			variance.Name,
			variance.Summary.TotalNominal,
			variance.Summary.TotalPresentValue,
			variance.NominalDelta,
			variance.NominalPct,
			marker)
	}
}

// PrettySensitivity outputs how the totals move under perturbed settings.
func PrettySensitivity(report engine.SensitivityReport) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Sensitivity for scenario %s ---\n", report.Scenario)
	for _, result := range append(report.DiscountRate, report.Horizon...) {
		_, _ = p.Printf("%-25s | $%.2f nominal (%+.2f%%) | $%.2f present value (%+.2f%%)\n",
			result.Label,
			result.TotalNominal, result.NominalDeltaPct,
			result.TotalPresentValue, result.PresentValueDeltaPct)
	}
}
