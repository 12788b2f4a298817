package testutil

import (
	"testing"

	"lifecare-forecast/internal/engine"
)

func TestFindCategory(t *testing.T) {
	summary := engine.Summary{
		Categories: []engine.CategorySummary{
			{Name: "Medications", Nominal: 1000},
			{Name: "Therapies", Nominal: 2000},
		},
	}

	if found := FindCategory(summary, "Therapies"); found == nil || found.Nominal != 2000 {
		t.Errorf("FindCategory(Therapies) = %+v", found)
	}
	if found := FindCategory(summary, "Missing"); found != nil {
		t.Errorf("FindCategory(Missing) = %+v, expected nil", found)
	}
}

func TestFindVariance(t *testing.T) {
	comparison := engine.Comparison{
		Baseline: "Baseline",
		Scenarios: []engine.ScenarioVariance{
			{Name: "Baseline", Baseline: true},
			{Name: "Aggressive", NominalDelta: 500},
		},
	}

	if found := FindVariance(comparison, "Aggressive"); found == nil || found.NominalDelta != 500 {
		t.Errorf("FindVariance(Aggressive) = %+v", found)
	}
	if found := FindVariance(comparison, "Missing"); found != nil {
		t.Errorf("FindVariance(Missing) = %+v, expected nil", found)
	}
}

func TestHasFinding(t *testing.T) {
	report := engine.ValidationReport{
		Findings: []engine.Finding{
			{Severity: engine.SeverityWarning, Message: "Medications: Gabapentin has no unit cost and contributes zero"},
		},
	}

	if !HasFinding(report, "no unit cost") {
		t.Errorf("expected finding fragment to match")
	}
	if HasFinding(report, "volatile") {
		t.Errorf("unexpected finding fragment match")
	}
}
