package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
)

// Currency is the display currency prices are converted into.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Timeframe selects how much history a raw series covers.
type Timeframe string

const (
	TimeframeOneDay  Timeframe = "1D"
	TimeframeOneWeek Timeframe = "1W"
)

// Steps returns the number of points a raw series holds for the timeframe.
// Unknown timeframes return 0.
func (t Timeframe) Steps() int {
	switch t {
	case TimeframeOneDay:
		return 24
	case TimeframeOneWeek:
		return 168
	default:
		return 0
	}
}

// Asset is an upper-case ticker such as BTC or ETH.
type Asset string

const (
	AssetBTC Asset = "BTC"
	AssetETH Asset = "ETH"
	AssetSOL Asset = "SOL"
)

// FilterState is the user-facing selection driving the pipeline.
// It is owned by the filter-control surface; the orchestrator only reads it.
type FilterState struct {
	Currency  Currency  `json:"currency" yaml:"currency" jsonschema:"enum=USD,enum=EUR" validate:"required,oneof=USD EUR"`
	Timeframe Timeframe `json:"timeframe" yaml:"timeframe" jsonschema:"enum=1D,enum=1W" validate:"required,oneof=1D 1W"`
	Asset     Asset     `json:"asset" yaml:"asset" jsonschema:"example=BTC,example=ETH,example=SOL" validate:"required,alphanum,uppercase,max=12"`
}

var validate = validator.New()

// DefaultFilterState is the selection a fresh dashboard starts with.
func DefaultFilterState() FilterState {
	return FilterState{
		Currency:  CurrencyUSD,
		Timeframe: TimeframeOneDay,
		Asset:     AssetBTC,
	}
}

// Validate checks the filter values and returns a configuration error on violation.
// A timeframe without a step count yields ErrCodeUnknownTimeframe.
func (f FilterState) Validate() error {
	if f.Timeframe != "" && f.Timeframe.Steps() == 0 {
		return errors.Newf(errors.ErrCodeUnknownTimeframe, "unknown timeframe %s", f.Timeframe)
	}

	if err := validate.Struct(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid filter state", err)
	}

	return nil
}

// RequiresRegeneration reports whether moving from f to next invalidates the raw series.
func (f FilterState) RequiresRegeneration(next FilterState) bool {
	return f.Asset != next.Asset || f.Timeframe != next.Timeframe
}
