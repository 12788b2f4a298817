package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"lifecare-forecast/internal/engine"
	"lifecare-forecast/internal/plan"
)

func floatPtr(v float64) *float64 {
	return &v
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func testResult(t *testing.T) ScenarioResult {
	t.Helper()
	item, err := plan.NewItem("Gabapentin", 0.05, floatPtr(300), floatPtr(12), plan.Recurring{StartYear: 2025, EndYear: 2054})
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	scenario := plan.Scenario{
		Name:     "Baseline",
		Settings: plan.ProjectionSettings{BaseYear: 2025, ProjectionYears: 30, DiscountRate: 0.03},
		Categories: []plan.Category{
			{Name: "Medications", Items: []plan.Item{item}},
		},
	}
	evaluee := plan.Evaluee{Name: "Test Subject", CurrentAge: 37.8, BirthYear: 1988, DiscountCalculations: true}

	e := engine.NewEngine(nil)
	return ScenarioResult{
		Schedule:   e.BuildSchedule(scenario, evaluee),
		Summary:    e.Summarize(scenario, evaluee),
		Validation: e.Validate(scenario, evaluee),
	}
}

func TestPrettyFormat(t *testing.T) {
	result := testResult(t)
	out := captureStdout(t, func() {
		PrettyFormat([]ScenarioResult{result})
	})

	if !strings.Contains(out, "--- Results for scenario Baseline ---") {
		t.Errorf("PrettyFormat missing scenario header")
	}
	if !strings.Contains(out, "Projection period: 2025-2054 (30.0 years)") {
		t.Errorf("PrettyFormat missing projection period")
	}
	// First-year cost is 300 * 12 with thousands separators.
	if !strings.Contains(out, "$3,600.00") {
		t.Errorf("PrettyFormat missing first-year total")
	}
	if !strings.Contains(out, "present value @ 3.0%") {
		t.Errorf("PrettyFormat missing discount rate")
	}
	if !strings.Contains(out, "Reconciliation PASSED") {
		t.Errorf("PrettyFormat missing reconciliation status")
	}
	if !strings.Contains(out, "Cost trend: increasing") {
		t.Errorf("PrettyFormat missing cost trend")
	}
}

func TestCsvFormat(t *testing.T) {
	result := testResult(t)
	out := captureStdout(t, func() {
		CsvFormat([]ScenarioResult{result})
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Scenario line, header line, then one row per projection year.
	if len(lines) != 2+len(result.Schedule.Rows) {
		t.Fatalf("line count = %d, expected %d", len(lines), 2+len(result.Schedule.Rows))
	}
	if lines[0] != `"scenario","Baseline"` {
		t.Errorf("scenario line = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Medications: Gabapentin (30 yrs @ 5.0%)"`) {
		t.Errorf("header line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], `"2025","37.8","3600.00"`) {
		t.Errorf("first data row = %q", lines[2])
	}
}

func TestPrettyComparison(t *testing.T) {
	comparison := engine.Comparison{
		Baseline: "Baseline",
		Scenarios: []engine.ScenarioVariance{
			{
				Name:     "Baseline",
				Baseline: true,
				Summary:  engine.Summary{TotalNominal: 100000, TotalPresentValue: 80000},
			},
			{
				Name:         "Aggressive",
				Summary:      engine.Summary{TotalNominal: 110000, TotalPresentValue: 85000},
				NominalDelta: 10000,
				NominalPct:   10,
			},
		},
	}

	out := captureStdout(t, func() {
		PrettyComparison(comparison)
	})

	if !strings.Contains(out, "--- Scenario comparison (baseline: Baseline) ---") {
		t.Errorf("PrettyComparison missing header")
	}
	if !strings.Contains(out, "(baseline)") {
		t.Errorf("PrettyComparison missing baseline marker")
	}
	if !strings.Contains(out, "$10,000.00 | 10.0%") {
		t.Errorf("PrettyComparison missing variance row: %s", out)
	}
}

func TestPrettySensitivity(t *testing.T) {
	report := engine.SensitivityReport{
		Scenario: "Baseline",
		DiscountRate: []engine.SensitivityResult{
			{Label: "discount rate 2.0%", TotalNominal: 100000, TotalPresentValue: 85000, PresentValueDeltaPct: 5.2},
		},
		Horizon: []engine.SensitivityResult{
			{Label: "39.0 year horizon", TotalNominal: 98000, TotalPresentValue: 78000, NominalDeltaPct: -2},
		},
	}

	out := captureStdout(t, func() {
		PrettySensitivity(report)
	})

	if !strings.Contains(out, "discount rate 2.0%") || !strings.Contains(out, "39.0 year horizon") {
		t.Errorf("PrettySensitivity missing perturbation rows: %s", out)
	}
	if !strings.Contains(out, "(+5.20%)") {
		t.Errorf("PrettySensitivity missing signed delta: %s", out)
	}
}
