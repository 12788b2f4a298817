// Package plan defines the data model for a life care plan: the evaluee,
// projection settings, cost items grouped into categories, and named
// scenarios. All computation over these types lives in the engine package;
// the model only enforces construction-time invariants and scenario
// management rules.
package plan

import (
	"fmt"
	"math"
	"time"
)

// Evaluee is the subject of the plan.
type Evaluee struct {
	Name       string
	CurrentAge float64
	BirthYear  int
	// DiscountCalculations is the master switch for present value; when
	// false the engine never discounts, regardless of the discount rate.
	DiscountCalculations bool
}

// NewEvaluee constructs an Evaluee, deriving the birth year from the current
// age when it is not provided.
func NewEvaluee(name string, currentAge float64, birthYear int, discountCalculations bool) (Evaluee, error) {
	return NewEvalueeAt(time.Now(), name, currentAge, birthYear, discountCalculations)
}

// NewEvalueeAt is NewEvaluee with an injectable reference time for the
// birth-year derivation.
func NewEvalueeAt(now time.Time, name string, currentAge float64, birthYear int, discountCalculations bool) (Evaluee, error) {
	if name == "" {
		return Evaluee{}, fmt.Errorf("evaluee name cannot be empty")
	}
	if currentAge <= 0 {
		return Evaluee{}, fmt.Errorf("evaluee %q: current age must be positive", name)
	}
	if birthYear == 0 {
		birthYear = now.Year() - int(math.Floor(currentAge))
	}
	return Evaluee{
		Name:                 name,
		CurrentAge:           currentAge,
		BirthYear:            birthYear,
		DiscountCalculations: discountCalculations,
	}, nil
}

// ProjectionSettings controls the projection window and discounting.
type ProjectionSettings struct {
	BaseYear        int
	ProjectionYears float64 // may be fractional, e.g. 39.4
	DiscountRate    float64 // decimal, e.g. 0.035 = 3.5%
}

// NewProjectionSettings constructs and validates projection settings.
func NewProjectionSettings(baseYear int, projectionYears, discountRate float64) (ProjectionSettings, error) {
	if projectionYears <= 0 {
		return ProjectionSettings{}, fmt.Errorf("projection years must be positive")
	}
	if discountRate < 0 {
		return ProjectionSettings{}, fmt.Errorf("discount rate cannot be negative")
	}
	return ProjectionSettings{
		BaseYear:        baseYear,
		ProjectionYears: projectionYears,
		DiscountRate:    discountRate,
	}, nil
}

// ScheduleYears is the number of year rows the projection window spans. A
// fractional horizon still materializes a row for the final partial year.
func (s ProjectionSettings) ScheduleYears() int {
	return int(math.Ceil(s.ProjectionYears))
}

// FinalYear is the last calendar year in the projection window.
func (s ProjectionSettings) FinalYear() int {
	return s.BaseYear + s.ScheduleYears() - 1
}
