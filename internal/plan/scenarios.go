package plan

import "fmt"

// BaselineName is the name given to the scenario synthesized from a plan's
// top-level settings and categories.
const BaselineName = "Baseline"

// Plan is the full set of inputs for one evaluee's cost projection. Every
// plan owns at least one scenario; when none are supplied a baseline is
// synthesized from the plan-level settings and categories.
type Plan struct {
	Evaluee        Evaluee
	Scenarios      []Scenario
	ActiveScenario string
}

// NewPlan constructs a plan with a synthesized baseline scenario.
func NewPlan(evaluee Evaluee, settings ProjectionSettings, categories []Category) *Plan {
	p := &Plan{Evaluee: evaluee}
	p.Scenarios = append(p.Scenarios, Scenario{
		Name:        BaselineName,
		Description: "Default baseline scenario",
		Settings:    settings,
		Categories:  categories,
		Baseline:    true,
	})
	p.ActiveScenario = BaselineName
	return p
}

// CurrentScenario returns the active scenario, falling back to the baseline
// (and repointing the active-scenario pointer at it) when the pointer is
// stale.
func (p *Plan) CurrentScenario() *Scenario {
	if sc := p.scenario(p.ActiveScenario); sc != nil {
		return sc
	}
	baseline := p.BaselineScenario()
	if baseline != nil {
		p.ActiveScenario = baseline.Name
	}
	return baseline
}

// BaselineScenario returns the scenario flagged baseline, or the first
// scenario when none is flagged, or nil for an empty plan.
func (p *Plan) BaselineScenario() *Scenario {
	for i := range p.Scenarios {
		if p.Scenarios[i].Baseline {
			return &p.Scenarios[i]
		}
	}
	if len(p.Scenarios) > 0 {
		return &p.Scenarios[0]
	}
	return nil
}

// AddScenario adds a scenario. Names must be unique and at most one scenario
// may be flagged baseline.
func (p *Plan) AddScenario(scenario Scenario) error {
	if p.scenario(scenario.Name) != nil {
		return fmt.Errorf("scenario %q already exists", scenario.Name)
	}
	if scenario.Baseline {
		for _, existing := range p.Scenarios {
			if existing.Baseline {
				return fmt.Errorf("scenario %q: plan already has baseline scenario %q", scenario.Name, existing.Name)
			}
		}
	}
	p.Scenarios = append(p.Scenarios, scenario)
	return nil
}

// RemoveScenario removes a scenario by name. The baseline scenario cannot be
// removed. Removing the active scenario repoints the active pointer at the
// baseline.
func (p *Plan) RemoveScenario(name string) error {
	for i := range p.Scenarios {
		if p.Scenarios[i].Name != name {
			continue
		}
		if p.Scenarios[i].Baseline {
			return fmt.Errorf("cannot remove baseline scenario %q", name)
		}
		p.Scenarios = append(p.Scenarios[:i], p.Scenarios[i+1:]...)
		if p.ActiveScenario == name {
			if baseline := p.BaselineScenario(); baseline != nil {
				p.ActiveScenario = baseline.Name
			} else {
				p.ActiveScenario = ""
			}
		}
		return nil
	}
	return fmt.Errorf("scenario %q not found", name)
}

// RenameScenario renames a scenario. The baseline scenario cannot be renamed
// and the new name must be unused.
func (p *Plan) RenameScenario(oldName, newName string) error {
	if p.scenario(newName) != nil {
		return fmt.Errorf("scenario %q already exists", newName)
	}
	sc := p.scenario(oldName)
	if sc == nil {
		return fmt.Errorf("scenario %q not found", oldName)
	}
	if sc.Baseline {
		return fmt.Errorf("cannot rename baseline scenario %q", oldName)
	}
	sc.Name = newName
	if p.ActiveScenario == oldName {
		p.ActiveScenario = newName
	}
	return nil
}

// CopyScenario deep-copies an existing scenario under a new name.
func (p *Plan) CopyScenario(sourceName, newName, newDescription string) error {
	source := p.scenario(sourceName)
	if source == nil {
		return fmt.Errorf("scenario %q not found", sourceName)
	}
	if p.scenario(newName) != nil {
		return fmt.Errorf("scenario %q already exists", newName)
	}
	p.Scenarios = append(p.Scenarios, source.Copy(newName, newDescription))
	return nil
}

// SetActiveScenario points the active-scenario pointer at the named scenario.
func (p *Plan) SetActiveScenario(name string) error {
	if p.scenario(name) == nil {
		return fmt.Errorf("scenario %q not found", name)
	}
	p.ActiveScenario = name
	return nil
}

func (p *Plan) scenario(name string) *Scenario {
	if name == "" {
		return nil
	}
	for i := range p.Scenarios {
		if p.Scenarios[i].Name == name {
			return &p.Scenarios[i]
		}
	}
	return nil
}
