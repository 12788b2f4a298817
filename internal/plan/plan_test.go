package plan

import (
	"testing"
	"time"
)

func TestNewEvaluee(t *testing.T) {
	ref := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	evaluee, err := NewEvalueeAt(ref, "Jane Doe", 37.8, 0, true)
	if err != nil {
		t.Fatalf("NewEvalueeAt() error = %v", err)
	}
	if evaluee.BirthYear != 1988 {
		t.Errorf("derived birth year = %d, expected 1988", evaluee.BirthYear)
	}

	explicit, err := NewEvalueeAt(ref, "Jane Doe", 37.8, 1987, true)
	if err != nil {
		t.Fatalf("NewEvalueeAt() error = %v", err)
	}
	if explicit.BirthYear != 1987 {
		t.Errorf("explicit birth year = %d, expected 1987", explicit.BirthYear)
	}

	if _, err := NewEvalueeAt(ref, "", 37.8, 0, true); err == nil {
		t.Errorf("expected error for empty name")
	}
	if _, err := NewEvalueeAt(ref, "Jane Doe", 0, 0, true); err == nil {
		t.Errorf("expected error for non-positive age")
	}
}

func TestNewProjectionSettings(t *testing.T) {
	settings, err := NewProjectionSettings(2025, 39.4, 0.035)
	if err != nil {
		t.Fatalf("NewProjectionSettings() error = %v", err)
	}
	if settings.ScheduleYears() != 40 {
		t.Errorf("ScheduleYears() = %d, expected 40", settings.ScheduleYears())
	}
	if settings.FinalYear() != 2064 {
		t.Errorf("FinalYear() = %d, expected 2064", settings.FinalYear())
	}

	whole, err := NewProjectionSettings(2025, 30, 0.03)
	if err != nil {
		t.Fatalf("NewProjectionSettings() error = %v", err)
	}
	if whole.ScheduleYears() != 30 {
		t.Errorf("ScheduleYears() = %d, expected 30", whole.ScheduleYears())
	}

	if _, err := NewProjectionSettings(2025, 0, 0.03); err == nil {
		t.Errorf("expected error for zero projection years")
	}
	if _, err := NewProjectionSettings(2025, 30, -0.01); err == nil {
		t.Errorf("expected error for negative discount rate")
	}
}

func testPlan(t *testing.T) *Plan {
	t.Helper()
	evaluee, err := NewEvalueeAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "Jane Doe", 35, 0, true)
	if err != nil {
		t.Fatalf("NewEvalueeAt() error = %v", err)
	}
	settings, err := NewProjectionSettings(2025, 30, 0.03)
	if err != nil {
		t.Fatalf("NewProjectionSettings() error = %v", err)
	}
	item, err := NewItem("Gabapentin", 0.016, floatPtr(277.40), floatPtr(12), Recurring{})
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	return NewPlan(evaluee, settings, []Category{
		{Name: "Medications", Items: []Item{item}},
	})
}

func TestNewPlanSynthesizesBaseline(t *testing.T) {
	p := testPlan(t)

	if len(p.Scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(p.Scenarios))
	}
	baseline := p.BaselineScenario()
	if baseline == nil || baseline.Name != BaselineName || !baseline.Baseline {
		t.Errorf("expected synthesized baseline scenario, got %+v", baseline)
	}
	if p.ActiveScenario != BaselineName {
		t.Errorf("active scenario = %q, expected %q", p.ActiveScenario, BaselineName)
	}
	if current := p.CurrentScenario(); current == nil || current.Name != BaselineName {
		t.Errorf("CurrentScenario() = %+v, expected baseline", current)
	}
}

func TestScenarioManagement(t *testing.T) {
	p := testPlan(t)
	baseline := p.BaselineScenario()

	conservative := baseline.Copy("Conservative Care", "higher discount rate")
	conservative.Settings.DiscountRate = 0.045
	if err := p.AddScenario(conservative); err != nil {
		t.Fatalf("AddScenario() error = %v", err)
	}

	// Duplicate names and second baselines are rejected.
	if err := p.AddScenario(Scenario{Name: "Conservative Care"}); err == nil {
		t.Errorf("expected error adding duplicate scenario name")
	}
	if err := p.AddScenario(Scenario{Name: "Another", Baseline: true}); err == nil {
		t.Errorf("expected error adding second baseline")
	}

	if err := p.SetActiveScenario("Conservative Care"); err != nil {
		t.Fatalf("SetActiveScenario() error = %v", err)
	}
	if err := p.SetActiveScenario("Missing"); err == nil {
		t.Errorf("expected error activating unknown scenario")
	}

	// Baseline is protected from rename and removal.
	if err := p.RenameScenario(BaselineName, "Renamed"); err == nil {
		t.Errorf("expected error renaming baseline")
	}
	if err := p.RemoveScenario(BaselineName); err == nil {
		t.Errorf("expected error removing baseline")
	}

	if err := p.RenameScenario("Conservative Care", "Aggressive Discounting"); err != nil {
		t.Fatalf("RenameScenario() error = %v", err)
	}
	if p.ActiveScenario != "Aggressive Discounting" {
		t.Errorf("active scenario did not follow rename: %q", p.ActiveScenario)
	}

	if err := p.RemoveScenario("Aggressive Discounting"); err != nil {
		t.Fatalf("RemoveScenario() error = %v", err)
	}
	if p.ActiveScenario != BaselineName {
		t.Errorf("active scenario = %q after removal, expected baseline", p.ActiveScenario)
	}
}

func TestCopyScenarioIsIndependent(t *testing.T) {
	p := testPlan(t)
	if err := p.CopyScenario(BaselineName, "What If", ""); err != nil {
		t.Fatalf("CopyScenario() error = %v", err)
	}

	copied := p.scenario("What If")
	if copied == nil {
		t.Fatalf("copied scenario not found")
	}
	if copied.Baseline {
		t.Errorf("copied scenario should not be baseline")
	}

	// Mutating the copy must not leak into the baseline.
	*copied.Categories[0].Items[0].UnitCost = 999
	baselineCost := *p.BaselineScenario().Categories[0].Items[0].UnitCost
	if baselineCost != 277.40 {
		t.Errorf("baseline unit cost mutated via copy: %v", baselineCost)
	}

	if err := p.CopyScenario("Missing", "X", ""); err == nil {
		t.Errorf("expected error copying unknown scenario")
	}
	if err := p.CopyScenario(BaselineName, "What If", ""); err == nil {
		t.Errorf("expected error copying onto existing name")
	}
}

func TestCategoryItemHelpers(t *testing.T) {
	p := testPlan(t)
	sc := p.CurrentScenario()

	category := sc.Category("Medications")
	if category == nil {
		t.Fatalf("category not found")
	}
	if _, ok := category.Item("Gabapentin"); !ok {
		t.Errorf("expected to find item Gabapentin")
	}
	if sc.ItemCount() != 1 {
		t.Errorf("ItemCount() = %d, expected 1", sc.ItemCount())
	}
	if !category.RemoveItem("Gabapentin") {
		t.Errorf("RemoveItem() = false, expected true")
	}
	if category.RemoveItem("Gabapentin") {
		t.Errorf("RemoveItem() on missing item = true, expected false")
	}

	if err := sc.AddCategory(Category{Name: "Medications"}); err == nil {
		t.Errorf("expected error adding duplicate category")
	}
	if err := sc.AddCategory(Category{Name: "Therapies"}); err != nil {
		t.Errorf("AddCategory() error = %v", err)
	}
	if !sc.RemoveCategory("Therapies") {
		t.Errorf("RemoveCategory() = false, expected true")
	}
}
