// Package config defines the plan document structures and loads and parses
// the YAML configuration into a validated plan.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/constants"
)

// Configuration holds everything a plan document can express, plus the
// logging and output blocks.
type Configuration struct {
	Evaluee        EvalueeSpec
	Settings       SettingsSpec
	Categories     []CategorySpec
	Scenarios      []ScenarioSpec
	ActiveScenario string
	Logging        LoggingConfig `yaml:"logging,omitempty"`
	Output         OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// EvalueeSpec describes the subject of the plan.
type EvalueeSpec struct {
	Name       string
	CurrentAge float64
	BirthYear  int
	// DiscountCalculations defaults to true when omitted.
	DiscountCalculations *bool
}

// SettingsSpec describes the projection window and discount rate.
type SettingsSpec struct {
	BaseYear        int
	ProjectionYears float64
	DiscountRate    float64
}

// CategorySpec is a named group of item specifications.
type CategorySpec struct {
	Name                 string
	DefaultInflationRate float64
	Items                []ItemSpec
}

// ItemSpec is one item as written in the document. Exactly one timing
// variant may be expressed: a recurring start/end window, discrete
// occurrence years, a one-time cost, or distributed instances.
type ItemSpec struct {
	Name             string
	InflationRate    *float64
	UnitCost         *float64
	CostRangeLow     *float64
	CostRangeHigh    *float64
	FrequencyPerYear *float64

	StartYear int
	EndYear   int

	OccurrenceYears []int

	OneTimeCost     bool
	OneTimeCostYear int

	DistributedInstances    bool
	TotalInstances          int
	DistributionPeriodYears float64
}

// ScenarioSpec is one named what-if scenario. Settings and categories fall
// back to the plan-level ones when omitted.
type ScenarioSpec struct {
	Name        string
	Description string
	Baseline    bool
	Settings    *SettingsSpec
	Categories  []CategorySpec
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader parses a YAML plan document from a reader;
// used by the HTTP API for uploaded documents.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config document, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// BuildPlan constructs a validated plan from the document. Construction
// errors are fatal; the returned warnings are advisory loader findings.
func (c *Configuration) BuildPlan() (*plan.Plan, []string, error) {
	return c.BuildPlanAt(time.Now())
}

// BuildPlanAt is BuildPlan with an injectable reference time for birth-year
// derivation.
func (c *Configuration) BuildPlanAt(now time.Time) (*plan.Plan, []string, error) {
	var warnings []string

	if c.Evaluee.CurrentAge > constants.MaxEvalueeAge {
		return nil, warnings, fmt.Errorf("evaluee age must be between 0.1 and %.0f", constants.MaxEvalueeAge)
	}
	discount := true
	if c.Evaluee.DiscountCalculations != nil {
		discount = *c.Evaluee.DiscountCalculations
	}
	evaluee, err := plan.NewEvalueeAt(now, c.Evaluee.Name, c.Evaluee.CurrentAge, c.Evaluee.BirthYear, discount)
	if err != nil {
		return nil, warnings, err
	}

	settings, err := buildSettings(c.Settings)
	if err != nil {
		return nil, warnings, err
	}

	categories, categoryWarnings, err := buildCategories(c.Categories)
	warnings = append(warnings, categoryWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	specBaseline := false
	for _, spec := range c.Scenarios {
		if spec.Baseline {
			specBaseline = true
		}
	}

	var p *plan.Plan
	if specBaseline {
		// The document designates its own baseline; no synthesized one.
		p = &plan.Plan{Evaluee: evaluee}
	} else {
		p = plan.NewPlan(evaluee, settings, categories)
	}

	for _, spec := range c.Scenarios {
		scenario, scenarioWarnings, err := buildScenario(spec, settings, categories)
		warnings = append(warnings, scenarioWarnings...)
		if err != nil {
			return nil, warnings, err
		}
		if err := p.AddScenario(scenario); err != nil {
			return nil, warnings, err
		}
	}

	if p.ActiveScenario == "" {
		if baseline := p.BaselineScenario(); baseline != nil {
			p.ActiveScenario = baseline.Name
		}
	}
	if c.ActiveScenario != "" {
		if err := p.SetActiveScenario(c.ActiveScenario); err != nil {
			return nil, warnings, err
		}
	}

	return p, warnings, nil
}

func buildSettings(spec SettingsSpec) (plan.ProjectionSettings, error) {
	if spec.DiscountRate > 1 {
		return plan.ProjectionSettings{}, fmt.Errorf("discount rate must be between 0 and 1")
	}
	return plan.NewProjectionSettings(spec.BaseYear, spec.ProjectionYears, spec.DiscountRate)
}

func buildScenario(spec ScenarioSpec, defaultSettings plan.ProjectionSettings, defaultCategories []plan.Category) (plan.Scenario, []string, error) {
	var warnings []string

	if spec.Name == "" {
		return plan.Scenario{}, warnings, fmt.Errorf("scenario name cannot be empty")
	}

	settings := defaultSettings
	if spec.Settings != nil {
		var err error
		settings, err = buildSettings(*spec.Settings)
		if err != nil {
			return plan.Scenario{}, warnings, fmt.Errorf("scenario %q: %w", spec.Name, err)
		}
	}

	var categories []plan.Category
	if spec.Categories != nil {
		var err error
		categories, warnings, err = buildCategories(spec.Categories)
		if err != nil {
			return plan.Scenario{}, warnings, fmt.Errorf("scenario %q: %w", spec.Name, err)
		}
	} else {
		// Deep-copy the plan-level categories so scenarios never alias
		// each other's items.
		source := plan.Scenario{Categories: defaultCategories}
		categories = source.Copy(spec.Name, "").Categories
	}

	return plan.Scenario{
		Name:        spec.Name,
		Description: spec.Description,
		Settings:    settings,
		Categories:  categories,
		Baseline:    spec.Baseline,
	}, warnings, nil
}

func buildCategories(specs []CategorySpec) ([]plan.Category, []string, error) {
	var warnings []string
	var categories []plan.Category

	seen := make(map[string]bool)
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, warnings, fmt.Errorf("category name cannot be empty")
		}
		if seen[spec.Name] {
			return nil, warnings, fmt.Errorf("duplicate category %q", spec.Name)
		}
		seen[spec.Name] = true

		category := plan.Category{
			Name:                 spec.Name,
			DefaultInflationRate: spec.DefaultInflationRate,
		}
		for _, itemSpec := range spec.Items {
			item, itemWarnings, err := buildItem(itemSpec, spec)
			warnings = append(warnings, itemWarnings...)
			if err != nil {
				return nil, warnings, fmt.Errorf("category %q: %w", spec.Name, err)
			}
			category.AddItem(item)
		}
		categories = append(categories, category)
	}

	return categories, warnings, nil
}

func buildItem(spec ItemSpec, category CategorySpec) (plan.Item, []string, error) {
	var warnings []string
	label := fmt.Sprintf("%s: %s", category.Name, spec.Name)

	timing, timingWarnings, err := buildTiming(spec, label)
	warnings = append(warnings, timingWarnings...)
	if err != nil {
		return plan.Item{}, warnings, err
	}

	// The category default inflation rate is a creation-time convenience
	// for items that do not carry their own rate.
	inflation := category.DefaultInflationRate
	if spec.InflationRate != nil {
		inflation = *spec.InflationRate
	}
	if inflation > 1 {
		// Almost always a percent value entered where a decimal belongs
		// (3.2 instead of 0.032).
		warnings = append(warnings, fmt.Sprintf(
			"item %q has inflation rate %.2f; rates are decimals (0.032 = 3.2%%)", label, inflation))
	}

	hasRange := spec.CostRangeLow != nil || spec.CostRangeHigh != nil
	if hasRange {
		if spec.CostRangeLow == nil || spec.CostRangeHigh == nil {
			return plan.Item{}, warnings, fmt.Errorf("item %q: cost range requires both low and high values", label)
		}
		if spec.UnitCost != nil {
			return plan.Item{}, warnings, fmt.Errorf("item %q: specify a unit cost or a cost range, not both", label)
		}
		item, err := plan.NewRangedItem(spec.Name, inflation, *spec.CostRangeLow, *spec.CostRangeHigh, spec.FrequencyPerYear, timing)
		if err != nil {
			return plan.Item{}, warnings, err
		}
		warnings = append(warnings, frequencyWarning(item, label)...)
		return item, warnings, nil
	}

	if spec.UnitCost == nil {
		warnings = append(warnings, fmt.Sprintf("item %q has no unit cost and will contribute zero", label))
	}
	item, err := plan.NewItem(spec.Name, inflation, spec.UnitCost, spec.FrequencyPerYear, timing)
	if err != nil {
		return plan.Item{}, warnings, err
	}
	warnings = append(warnings, frequencyWarning(item, label)...)
	return item, warnings, nil
}

func frequencyWarning(item plan.Item, label string) []string {
	if item.FrequencyPerYear == nil {
		return []string{fmt.Sprintf("item %q has no frequency and will contribute zero", label)}
	}
	return nil
}

// buildTiming picks the item's timing variant from the document fields and
// rejects contradictory combinations.
func buildTiming(spec ItemSpec, label string) (plan.Timing, []string, error) {
	variants := 0
	if spec.OneTimeCost {
		variants++
	}
	if spec.DistributedInstances {
		variants++
	}
	if len(spec.OccurrenceYears) > 0 {
		variants++
	}
	if variants > 1 {
		return nil, nil, fmt.Errorf("item %q: one-time cost, distributed instances, and occurrence years are mutually exclusive", label)
	}

	switch {
	case spec.OneTimeCost:
		if spec.StartYear != 0 || spec.EndYear != 0 {
			return nil, nil, fmt.Errorf("item %q: a one-time cost cannot carry a recurring start/end window", label)
		}
		return plan.OneTime{Year: spec.OneTimeCostYear}, nil, nil
	case spec.DistributedInstances:
		return plan.Distributed{
			StartYear:      spec.StartYear,
			TotalInstances: spec.TotalInstances,
			PeriodYears:    spec.DistributionPeriodYears,
		}, nil, nil
	case len(spec.OccurrenceYears) > 0:
		if spec.StartYear != 0 || spec.EndYear != 0 {
			return nil, nil, fmt.Errorf("item %q: occurrence years cannot carry a recurring start/end window", label)
		}
		return plan.Discrete{Years: spec.OccurrenceYears}, nil, nil
	default:
		var warnings []string
		if spec.StartYear == 0 && spec.EndYear == 0 {
			warnings = append(warnings, fmt.Sprintf(
				"item %q missing timing information - using projection window defaults", label))
		}
		return plan.Recurring{StartYear: spec.StartYear, EndYear: spec.EndYear}, warnings, nil
	}
}
