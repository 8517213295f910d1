package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// RawPricePoint is a single generated price. It is never modified after creation.
type RawPricePoint struct {
	// Time is the display label in H:MM form
	Time string `json:"time"`
	// Timestamp is the instant the label was derived from
	Timestamp time.Time `json:"-"`
	// OriginalPrice is the price in the feed's base currency (USD)
	OriginalPrice float64 `json:"originalPrice"`
}

// EnrichedPricePoint is a raw point after currency conversion and indicator derivation.
// Indicator fields are None until enough history exists to compute them.
type EnrichedPricePoint struct {
	Time          string                   `json:"time"`
	Timestamp     time.Time                `json:"-"`
	Price         float64                  `json:"price"`
	OriginalPrice float64                  `json:"originalPrice"`
	MA            optional.Option[float64] `json:"ma" jsonschema:"description=Simple moving average over the Bollinger window"`
	Upper         optional.Option[float64] `json:"upper" jsonschema:"description=Upper Bollinger band"`
	Lower         optional.Option[float64] `json:"lower" jsonschema:"description=Lower Bollinger band"`
	RSI           optional.Option[float64] `json:"rsi" jsonschema:"description=Wilder RSI in the range 0 to 100"`
}

// RawSeries is a time-ordered sequence of generated prices.
type RawSeries []RawPricePoint

// DerivedSeries is a RawSeries after conversion and indicator derivation.
// It always has the same length and order as the raw series it came from.
type DerivedSeries []EnrichedPricePoint

// Enrich lifts a raw point into an enriched point priced in the base currency
// with every indicator absent.
func (p RawPricePoint) Enrich() EnrichedPricePoint {
	return EnrichedPricePoint{
		Time:          p.Time,
		Timestamp:     p.Timestamp,
		Price:         p.OriginalPrice,
		OriginalPrice: p.OriginalPrice,
		MA:            optional.None[float64](),
		Upper:         optional.None[float64](),
		Lower:         optional.None[float64](),
		RSI:           optional.None[float64](),
	}
}

// Prices returns the converted prices of the series in order.
func (s DerivedSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}

	return prices
}

// Clone returns a copy of the series that shares no backing array with s,
// including the indicator values.
func (s DerivedSeries) Clone() DerivedSeries {
	if s == nil {
		return nil
	}

	out := make(DerivedSeries, len(s))
	for i, p := range s {
		p.MA = cloneOption(p.MA)
		p.Upper = cloneOption(p.Upper)
		p.Lower = cloneOption(p.Lower)
		p.RSI = cloneOption(p.RSI)
		out[i] = p
	}

	return out
}

// cloneOption detaches o from its backing array. Option is a slice, so a plain
// struct copy would alias the stored value.
func cloneOption(o optional.Option[float64]) optional.Option[float64] {
	if o.IsNone() {
		return optional.None[float64]()
	}

	return optional.Some(o.Unwrap())
}
