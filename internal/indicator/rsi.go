package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
)

// zeroLossRS replaces avgGain/avgLoss when avgLoss is zero, which caps RSI at
// 99.01 instead of 100.
const zeroLossRS = 100.0

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	r.period = period

	return nil
}

// Compute implements Indicator.
func (r *RSI) Compute(series types.DerivedSeries) (types.DerivedSeries, error) {
	return ComputeRSI(series, r.period)
}

// wilderState carries the smoothed averages through one forward pass.
type wilderState struct {
	period  float64
	avgGain float64
	avgLoss float64
}

// seed averages the first period price changes.
func seedWilder(prices []float64, period int) wilderState {
	var gains, losses float64

	for i := 1; i <= period; i++ {
		gain, loss := split(prices[i] - prices[i-1])
		gains += gain
		losses += loss
	}

	return wilderState{
		period:  float64(period),
		avgGain: gains / float64(period),
		avgLoss: losses / float64(period),
	}
}

// step folds one price change into the averages and returns the RSI after it.
func (s *wilderState) step(change float64) float64 {
	gain, loss := split(change)
	s.avgGain = (s.avgGain*(s.period-1) + gain) / s.period
	s.avgLoss = (s.avgLoss*(s.period-1) + loss) / s.period

	rs := zeroLossRS
	if s.avgLoss != 0 {
		rs = s.avgGain / s.avgLoss
	}

	return 100 - (100 / (1 + rs))
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}

	return 0, -change
}

// ComputeRSI fills rsi using Wilder's smoothing. The first period points keep
// rsi absent; a series shorter than period+1 points has no rsi at all. The
// pass is strictly sequential: every value depends on all earlier ones.
func ComputeRSI(series types.DerivedSeries, period int) (types.DerivedSeries, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if err := checkPrices(series); err != nil {
		return nil, err
	}

	out := series.Clone()
	if out == nil {
		out = types.DerivedSeries{}
	}

	for i := range out {
		out[i].RSI = optional.None[float64]()
	}

	if len(series) < period+1 {
		return out, nil
	}

	prices := series.Prices()
	state := seedWilder(prices, period)

	// the change at index period is already in the seed and is smoothed in once more
	for i := period; i < len(prices); i++ {
		out[i].RSI = optional.Some(utils.Round2(state.step(prices[i] - prices[i-1])))
	}

	return out, nil
}
