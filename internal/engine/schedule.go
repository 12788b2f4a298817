package engine

import (
	"fmt"

	"go.uber.org/zap"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/mathutil"
)

// Column identifies one item column in a schedule, in
// category-then-insertion order.
type Column struct {
	Category string
	Item     string
	Label    string
}

// Row is one projection year.
type Row struct {
	Year         int
	Age          float64
	Costs        []float64 // parallel to Schedule.Columns
	NominalTotal float64
	PresentValue float64
}

// Schedule is the full year-by-year cost table for one scenario.
type Schedule struct {
	Scenario string
	Columns  []Column
	Rows     []Row
	// HasPresentValue reports whether the PresentValue row field is
	// populated (discounting enabled and a nonzero rate).
	HasPresentValue bool
}

// BuildSchedule produces one row per year from the base year through the end
// of the projection window. A fractional horizon materializes a row for the
// final partial year; that row carries the full-year cost, not a prorated
// one (a documented approximation, quantified by Sensitivity).
func (e *Engine) BuildSchedule(scenario plan.Scenario, evaluee plan.Evaluee) Schedule {
	settings := scenario.Settings
	schedule := Schedule{
		Scenario:        scenario.Name,
		Columns:         buildColumns(scenario),
		HasPresentValue: evaluee.DiscountCalculations && settings.DiscountRate > 0,
	}

	years := settings.ScheduleYears()
	e.logger.Debug("building cost schedule",
		zap.String("op", "engine.BuildSchedule"),
		zap.String("scenario", scenario.Name),
		zap.Int("years", years),
		zap.Int("items", scenario.ItemCount()),
	)

	for offset := 0; offset < years; offset++ {
		year := settings.BaseYear + offset
		row := Row{
			Year:  year,
			Age:   evaluee.CurrentAge + float64(offset),
			Costs: make([]float64, 0, len(schedule.Columns)),
		}

		total := 0.0
		for _, category := range scenario.Categories {
			for _, item := range category.Items {
				cost := e.CostOf(item, year, settings)
				row.Costs = append(row.Costs, cost)
				total += cost
			}
		}
		row.NominalTotal = mathutil.Round(total)

		if schedule.HasPresentValue {
			row.PresentValue = e.PresentValue(row.NominalTotal, offset, settings, evaluee)
		}

		schedule.Rows = append(schedule.Rows, row)
	}

	return schedule
}

// buildColumns lays out item columns deterministically: categories in plan
// order, items in insertion order, labeled the way the original schedule
// headers read.
func buildColumns(scenario plan.Scenario) []Column {
	var columns []Column
	for _, category := range scenario.Categories {
		for _, item := range category.Items {
			columns = append(columns, Column{
				Category: category.Name,
				Item:     item.Name,
				Label:    columnLabel(category.Name, item, scenario.Settings),
			})
		}
	}
	return columns
}

func columnLabel(categoryName string, item plan.Item, settings plan.ProjectionSettings) string {
	switch timing := item.Timing.(type) {
	case plan.Discrete:
		return fmt.Sprintf("%s: %s (%d occ. @ %.1f%%)", categoryName, item.Name, len(timing.Years), item.InflationRate*100)
	case plan.OneTime:
		return fmt.Sprintf("%s: %s (one-time %d @ %.1f%%)", categoryName, item.Name, timing.Year, item.InflationRate*100)
	case plan.Distributed:
		return fmt.Sprintf("%s: %s (%d over %.1f yrs @ %.1f%%)", categoryName, item.Name, timing.TotalInstances, timing.PeriodYears, item.InflationRate*100)
	default:
		start, end := item.Window(settings)
		return fmt.Sprintf("%s: %s (%d yrs @ %.1f%%)", categoryName, item.Name, end-start+1, item.InflationRate*100)
	}
}
