package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of points in the trailing window
	stdDev float64 // Band width in population standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 10,
		stdDev: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Compute implements Indicator.
func (bb *BollingerBands) Compute(series types.DerivedSeries) (types.DerivedSeries, error) {
	return computeBands(series, bb.period, bb.stdDev)
}

// ComputeBollinger fills ma, upper and lower using a trailing window of
// windowSize prices and bands two population standard deviations wide.
// The first windowSize-1 points keep the fields absent.
func ComputeBollinger(series types.DerivedSeries, windowSize int) (types.DerivedSeries, error) {
	return computeBands(series, windowSize, 2.0)
}

func computeBands(series types.DerivedSeries, period int, width float64) (types.DerivedSeries, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "window size must be a positive integer, got %d", period)
	}

	if err := checkPrices(series); err != nil {
		return nil, err
	}

	out := series.Clone()
	if out == nil {
		out = types.DerivedSeries{}
	}

	for i := range out {
		if i < period-1 {
			out[i].MA = optional.None[float64]()
			out[i].Upper = optional.None[float64]()
			out[i].Lower = optional.None[float64]()

			continue
		}

		upper, middle, lower := calculateBands(series[i-period+1:i+1], width)
		out[i].MA = optional.Some(utils.Round2(middle))
		out[i].Upper = optional.Some(utils.Round2(upper))
		out[i].Lower = optional.Some(utils.Round2(lower))
	}

	return out, nil
}

// calculateBands calculates the band values over window.
func calculateBands(window types.DerivedSeries, width float64) (upper, middle, lower float64) {
	n := float64(len(window))

	var sum float64
	for _, p := range window {
		sum += p.Price
	}

	middle = sum / n

	var squaredDiffSum float64

	for _, p := range window {
		diff := p.Price - middle
		squaredDiffSum += diff * diff
	}

	stdDev := math.Sqrt(squaredDiffSum / n)

	upper = middle + (width * stdDev)
	lower = middle - (width * stdDev)

	return upper, middle, lower
}
