// Package testutil provides common utility functions for testing.
package testutil

import (
	"strings"

	"lifecare-forecast/internal/engine"
)

// FindCategory finds a category rollup by name in a summary.
// Returns a pointer to the rollup if found, nil otherwise.
func FindCategory(summary engine.Summary, name string) *engine.CategorySummary {
	for i := range summary.Categories {
		if summary.Categories[i].Name == name {
			return &summary.Categories[i]
		}
	}
	return nil
}

// FindVariance finds a scenario's variance entry by name in a comparison.
// Returns a pointer to the entry if found, nil otherwise.
func FindVariance(comparison engine.Comparison, name string) *engine.ScenarioVariance {
	for i := range comparison.Scenarios {
		if comparison.Scenarios[i].Name == name {
			return &comparison.Scenarios[i]
		}
	}
	return nil
}

// HasFinding reports whether any validation finding message contains the
// given fragment.
func HasFinding(report engine.ValidationReport, fragment string) bool {
	for _, finding := range report.Findings {
		if strings.Contains(finding.Message, fragment) {
			return true
		}
	}
	return false
}
