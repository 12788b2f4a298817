package engine

import (
	"fmt"

	"go.uber.org/zap"

	"lifecare-forecast/internal/plan"
	"lifecare-forecast/pkg/mathutil"
)

// ScenarioVariance is one scenario's summary plus its variance against the
// baseline.
type ScenarioVariance struct {
	Name              string
	Baseline          bool
	Summary           Summary
	NominalDelta      float64
	NominalPct        float64
	PresentValueDelta float64
	PresentValuePct   float64
}

// Comparison reports every scenario against the designated baseline.
type Comparison struct {
	Baseline  string
	Scenarios []ScenarioVariance
}

// Compare summarizes each scenario independently under its own settings and
// categories, then reports absolute and percentage variance against the
// baseline scenario.
func (e *Engine) Compare(p *plan.Plan) (Comparison, error) {
	baseline := p.BaselineScenario()
	if baseline == nil {
		return Comparison{}, fmt.Errorf("plan has no scenarios to compare")
	}

	baselineSummary := e.Summarize(*baseline, p.Evaluee)
	comparison := Comparison{Baseline: baseline.Name}

	for _, scenario := range p.Scenarios {
		variance := ScenarioVariance{
			Name:     scenario.Name,
			Baseline: scenario.Name == baseline.Name,
		}
		if variance.Baseline {
			variance.Summary = baselineSummary
		} else {
			variance.Summary = e.Summarize(scenario, p.Evaluee)
			variance.NominalDelta = mathutil.Round(variance.Summary.TotalNominal - baselineSummary.TotalNominal)
			variance.NominalPct = mathutil.CalculatePercentage(variance.NominalDelta, baselineSummary.TotalNominal)
			variance.PresentValueDelta = mathutil.Round(variance.Summary.TotalPresentValue - baselineSummary.TotalPresentValue)
			variance.PresentValuePct = mathutil.CalculatePercentage(variance.PresentValueDelta, baselineSummary.TotalPresentValue)
		}
		comparison.Scenarios = append(comparison.Scenarios, variance)

		e.logger.Debug("compared scenario against baseline",
			zap.String("op", "engine.Compare"),
			zap.String("scenario", scenario.Name),
			zap.Float64("totalNominal", variance.Summary.TotalNominal),
			zap.Float64("nominalDelta", variance.NominalDelta),
		)
	}

	return comparison, nil
}
