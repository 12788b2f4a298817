package plan

import (
	"fmt"
	"math"
)

// Timing selects the years an Item applies to. Exactly one concrete timing
// type is attached to an Item at construction, so "exactly one variant
// populated" holds structurally rather than by runtime checks.
type Timing interface {
	timingVariant()
}

// Recurring applies to every year in [StartYear, EndYear] inclusive. A zero
// StartYear defaults to the settings base year; a zero EndYear defaults to
// the final whole projection year.
type Recurring struct {
	StartYear int
	EndYear   int
}

// Discrete applies only in the explicitly listed years.
type Discrete struct {
	Years []int
}

// OneTime applies in exactly one year; the item's frequency is forced to 1.
type OneTime struct {
	Year int
}

// Distributed spreads a total instance count evenly across a duration in
// years beginning at StartYear. It applies while
// StartYear <= year < StartYear + PeriodYears.
type Distributed struct {
	StartYear      int
	TotalInstances int
	PeriodYears    float64
}

func (Recurring) timingVariant()   {}
func (Discrete) timingVariant()    {}
func (OneTime) timingVariant()     {}
func (Distributed) timingVariant() {}

// Item is a single cost-bearing obligation: unit cost, frequency, inflation
// rate, and a timing rule. Items are read-only inputs to the engine.
//
// UnitCost and FrequencyPerYear are pointers so that a partially-specified
// item is representable: a nil value means "unset" and the engine treats the
// item as contributing zero rather than failing the whole schedule.
type Item struct {
	Name             string
	InflationRate    float64
	UnitCost         *float64
	FrequencyPerYear *float64
	CostRangeLow     float64
	CostRangeHigh    float64
	UsesCostRange    bool
	Timing           Timing
}

// NewItem constructs and validates an Item with a direct unit cost. A nil
// unitCost or frequencyPerYear is accepted and leaves the field unset.
func NewItem(name string, inflationRate float64, unitCost, frequencyPerYear *float64, timing Timing) (Item, error) {
	item := Item{
		Name:             name,
		InflationRate:    inflationRate,
		UnitCost:         unitCost,
		FrequencyPerYear: frequencyPerYear,
		Timing:           timing,
	}
	if err := item.validate(); err != nil {
		return Item{}, err
	}
	item.applyTimingDefaults()
	return item, nil
}

// NewRangedItem constructs an Item whose unit cost is the arithmetic mean of
// a low/high cost range, fixed at creation time.
func NewRangedItem(name string, inflationRate float64, rangeLow, rangeHigh float64, frequencyPerYear *float64, timing Timing) (Item, error) {
	if rangeLow < 0 || rangeHigh < 0 {
		return Item{}, fmt.Errorf("item %q: cost range values cannot be negative", name)
	}
	if rangeLow > rangeHigh {
		return Item{}, fmt.Errorf("item %q: cost range low value cannot be greater than high value", name)
	}
	mean := (rangeLow + rangeHigh) / 2
	item := Item{
		Name:             name,
		InflationRate:    inflationRate,
		UnitCost:         &mean,
		FrequencyPerYear: frequencyPerYear,
		CostRangeLow:     rangeLow,
		CostRangeHigh:    rangeHigh,
		UsesCostRange:    true,
		Timing:           timing,
	}
	if err := item.validate(); err != nil {
		return Item{}, err
	}
	item.applyTimingDefaults()
	return item, nil
}

func (item *Item) validate() error {
	if item.InflationRate < 0 {
		return fmt.Errorf("item %q: inflation rate cannot be negative", item.Name)
	}
	if item.UnitCost != nil && *item.UnitCost < 0 {
		return fmt.Errorf("item %q: unit cost cannot be negative", item.Name)
	}
	if item.FrequencyPerYear != nil && *item.FrequencyPerYear < 0 {
		return fmt.Errorf("item %q: frequency per year cannot be negative", item.Name)
	}
	switch timing := item.Timing.(type) {
	case nil:
		return fmt.Errorf("item %q: missing timing rule", item.Name)
	case Recurring:
		if timing.StartYear != 0 && timing.EndYear != 0 && timing.EndYear < timing.StartYear {
			return fmt.Errorf("item %q: end year %d precedes start year %d", item.Name, timing.EndYear, timing.StartYear)
		}
	case Discrete:
		if len(timing.Years) == 0 {
			return fmt.Errorf("item %q: discrete timing requires at least one occurrence year", item.Name)
		}
	case OneTime:
		if timing.Year == 0 {
			return fmt.Errorf("item %q: one-time cost must have a specified year", item.Name)
		}
	case Distributed:
		if timing.TotalInstances <= 0 {
			return fmt.Errorf("item %q: distributed instances must have a positive total instance count", item.Name)
		}
		if timing.PeriodYears <= 0 {
			return fmt.Errorf("item %q: distributed instances must have a positive distribution period", item.Name)
		}
		if timing.StartYear == 0 {
			return fmt.Errorf("item %q: distributed instances must have a start year", item.Name)
		}
	}
	return nil
}

// applyTimingDefaults derives frequency for the variants that own it:
// one-time costs always occur once, distributed instances spread their total
// count across the distribution period.
func (item *Item) applyTimingDefaults() {
	switch timing := item.Timing.(type) {
	case OneTime:
		one := 1.0
		item.FrequencyPerYear = &one
	case Distributed:
		freq := float64(timing.TotalInstances) / timing.PeriodYears
		item.FrequencyPerYear = &freq
	}
}

// BaseAmount returns unit cost times yearly frequency. The second return is
// false when either field is unset, in which case the item contributes zero.
func (item Item) BaseAmount() (float64, bool) {
	if item.UnitCost == nil || item.FrequencyPerYear == nil {
		return 0, false
	}
	return *item.UnitCost * *item.FrequencyPerYear, true
}

// Window returns the first and last calendar year the item can apply to,
// resolving recurring defaults against the given settings.
func (item Item) Window(settings ProjectionSettings) (int, int) {
	switch timing := item.Timing.(type) {
	case Recurring:
		start, end := timing.StartYear, timing.EndYear
		if start == 0 {
			start = settings.BaseYear
		}
		if end == 0 {
			end = settings.BaseYear + int(math.Floor(settings.ProjectionYears)) - 1
		}
		return start, end
	case Discrete:
		first, last := timing.Years[0], timing.Years[0]
		for _, year := range timing.Years[1:] {
			if year < first {
				first = year
			}
			if year > last {
				last = year
			}
		}
		return first, last
	case OneTime:
		return timing.Year, timing.Year
	case Distributed:
		last := timing.StartYear + int(math.Ceil(timing.PeriodYears)) - 1
		return timing.StartYear, last
	}
	return settings.BaseYear, settings.BaseYear
}
