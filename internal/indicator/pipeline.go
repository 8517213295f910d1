package indicator

import (
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
)

// Pipeline applies indicators in order, each one receiving the previous output.
type Pipeline struct {
	stages []Indicator
}

// NewPipeline resolves names against registry in the given order.
func NewPipeline(registry IndicatorRegistry, names ...types.IndicatorType) (*Pipeline, error) {
	stages := make([]Indicator, 0, len(names))

	for _, name := range names {
		ind, err := registry.GetIndicator(name)
		if err != nil {
			return nil, err
		}

		stages = append(stages, ind)
	}

	return &Pipeline{stages: stages}, nil
}

// NewDefaultPipeline builds Bollinger Bands followed by RSI with the given parameters.
func NewDefaultPipeline(bollingerWindow int, rsiPeriod int) (*Pipeline, error) {
	bb := NewBollingerBands()
	if err := bb.Config(bollingerWindow, 2.0); err != nil {
		return nil, err
	}

	rsi := NewRSI()
	if err := rsi.Config(rsiPeriod); err != nil {
		return nil, err
	}

	registry := NewIndicatorRegistry()
	for _, ind := range []Indicator{bb, rsi} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return NewPipeline(registry, types.IndicatorTypeBollingerBands, types.IndicatorTypeRSI)
}

// Stages returns the indicator names in application order.
func (p *Pipeline) Stages() []types.IndicatorType {
	names := make([]types.IndicatorType, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}

	return names
}

// Apply runs every stage over series and returns the final series.
func (p *Pipeline) Apply(series types.DerivedSeries) (types.DerivedSeries, error) {
	out := series

	for _, stage := range p.stages {
		next, err := stage.Compute(out)
		if err != nil {
			return nil, err
		}

		if len(next) != len(out) {
			return nil, errors.Newf(errors.ErrCodeSeriesMismatch, "%s returned %d points for %d inputs", stage.Name(), len(next), len(out))
		}

		out = next
	}

	return out, nil
}
