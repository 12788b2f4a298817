package engine

import (
	"strings"
	"testing"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/constants"
)

func mixedScenario(t *testing.T) plan.Scenario {
	t.Helper()
	meds := mustItem(t, "Gabapentin", 0.016, floatPtr(277.40), floatPtr(12),
		plan.Recurring{StartYear: 2025, EndYear: 2063})
	therapy := mustItem(t, "Physical Therapy", 0.028, floatPtr(150), floatPtr(52),
		plan.Recurring{})
	mri := mustItem(t, "MRI Head", 0.03, floatPtr(1852.03), floatPtr(1),
		plan.Discrete{Years: []int{2027, 2032, 2040}})
	surgery := mustItem(t, "Shoulder Arthroscopy", 0.035, floatPtr(130600.45), nil,
		plan.OneTime{Year: 2027})
	counseling := mustItem(t, "Counseling", 0.028, floatPtr(150), nil,
		plan.Distributed{StartYear: 2026, TotalInstances: 40, PeriodYears: 2.5})

	return plan.Scenario{
		Name:     "Baseline",
		Settings: plan.ProjectionSettings{BaseYear: 2025, ProjectionYears: 39.4, DiscountRate: 0.035},
		Categories: []plan.Category{
			{Name: "Medications", Items: []plan.Item{meds}},
			{Name: "Therapies", Items: []plan.Item{therapy, counseling}},
			{Name: "Diagnostics", Items: []plan.Item{mri}},
			{Name: "Surgeries", Items: []plan.Item{surgery}},
		},
		Baseline: true,
	}
}

func TestValidateReconciliation(t *testing.T) {
	e := NewEngine(nil)
	report := e.Validate(mixedScenario(t), testEvaluee(true))

	if !report.Passed {
		t.Errorf("reconciliation failed: by-item %.2f vs by-year %.2f (discrepancy %.2f)",
			report.ByItemTotal, report.ByYearTotal, report.Discrepancy)
	}
	if report.Discrepancy >= constants.ReconciliationTolerance {
		t.Errorf("discrepancy %.2f not under tolerance %.2f",
			report.Discrepancy, constants.ReconciliationTolerance)
	}
	if len(report.Breakdown) != 5 {
		t.Fatalf("breakdown has %d entries, expected 5", len(report.Breakdown))
	}

	// Both paths are sums over the same cost matrix.
	sum := 0.0
	for _, entry := range report.Breakdown {
		sum += entry.Nominal
	}
	if !withinCent(sum, report.ByItemTotal) {
		t.Errorf("breakdown sums to %.2f, by-item total is %.2f", sum, report.ByItemTotal)
	}
}

func TestValidateReconciliationEdgeCases(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name     string
		scenario plan.Scenario
	}{
		{
			name:     "Simple recurring scenario",
			scenario: medicationScenario(t),
		},
		{
			name: "Empty scenario",
			scenario: plan.Scenario{
				Name:     "Empty",
				Settings: plan.ProjectionSettings{BaseYear: 2025, ProjectionYears: 5, DiscountRate: 0},
			},
		},
		{
			name:     "Fractional horizon",
			scenario: mixedScenario(t),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, discounting := range []bool{true, false} {
				report := e.Validate(tt.scenario, testEvaluee(discounting))
				if !report.Passed {
					t.Errorf("discounting=%v: discrepancy %.2f exceeds tolerance",
						discounting, report.Discrepancy)
				}
			}
		})
	}
}

func TestValidateIntegrityFindings(t *testing.T) {
	e := NewEngine(nil)

	noCost := mustItem(t, "Unpriced", 0.05, nil, floatPtr(1), plan.Recurring{})
	hotInflation := mustItem(t, "Hyperinflated", 0.25, floatPtr(100), floatPtr(1), plan.Recurring{})
	zeroFreq := mustItem(t, "Never occurs", 0.03, floatPtr(100), floatPtr(0), plan.Recurring{})

	scenario := plan.Scenario{
		Name:     "Messy",
		Settings: plan.ProjectionSettings{BaseYear: 2025, ProjectionYears: 10, DiscountRate: 0.12},
		Categories: []plan.Category{
			{Name: "Misc", Items: []plan.Item{noCost, hotInflation, zeroFreq}},
		},
	}

	report := e.Validate(scenario, testEvaluee(true))

	expectFinding(t, report.Findings, "has no unit cost")
	expectFinding(t, report.Findings, "inflation rate 25.0% is above the typical range")
	expectFinding(t, report.Findings, "non-positive frequency")
	expectFinding(t, report.Findings, "discount rate 12.0% is above the typical range")
}

func expectFinding(t *testing.T, findings []Finding, fragment string) {
	t.Helper()
	for _, finding := range findings {
		if strings.Contains(finding.Message, fragment) {
			return
		}
	}
	t.Errorf("no finding containing %q in %+v", fragment, findings)
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		totals   []float64
		expected string
	}{
		{
			name:     "Inflating costs increase",
			totals:   []float64{100, 105, 110, 116, 122, 128, 134, 141, 148},
			expected: TrendIncreasing,
		},
		{
			name:     "Winding-down plan decreases",
			totals:   []float64{150, 140, 130, 100, 80, 60, 40, 20, 10},
			expected: TrendDecreasing,
		},
		{
			name:     "Flat costs are stable",
			totals:   []float64{100, 100, 100, 100, 100, 100},
			expected: TrendStable,
		},
		{
			name:     "Too short to classify",
			totals:   []float64{100, 200},
			expected: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrend(tt.totals); got != tt.expected {
				t.Errorf("classifyTrend() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestValidateTrendOnInflatingScenario(t *testing.T) {
	e := NewEngine(nil)
	report := e.Validate(medicationScenario(t), testEvaluee(true))
	if report.Trend != TrendIncreasing {
		t.Errorf("Trend = %q, expected %q for a 5%% inflating recurring item",
			report.Trend, TrendIncreasing)
	}
}

func TestValidateOutlierYear(t *testing.T) {
	e := NewEngine(nil)

	// A flat recurring base with one enormous one-time spike.
	meds := mustItem(t, "Medication", 0.0, floatPtr(100), floatPtr(12), plan.Recurring{})
	spike := mustItem(t, "Major Surgery", 0.0, floatPtr(500000), nil, plan.OneTime{Year: 2030})
	scenario := plan.Scenario{
		Name:     "Spiky",
		Settings: plan.ProjectionSettings{BaseYear: 2025, ProjectionYears: 30, DiscountRate: 0},
		Categories: []plan.Category{
			{Name: "Medications", Items: []plan.Item{meds}},
			{Name: "Surgeries", Items: []plan.Item{spike}},
		},
	}

	report := e.Validate(scenario, testEvaluee(false))
	expectFinding(t, report.Findings, "year 2030")
	if !report.Passed {
		t.Errorf("outlier finding should not fail reconciliation")
	}
}
