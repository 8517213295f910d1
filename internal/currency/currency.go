package currency

import (
	"sort"

	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/shopspring/decimal"
)

// Table maps display currencies to their multiplier against the feed's base currency.
type Table struct {
	rates map[types.Currency]decimal.Decimal
}

// DefaultRates are the fixed conversion multipliers the dashboard ships with.
func DefaultRates() map[types.Currency]float64 {
	return map[types.Currency]float64{
		types.CurrencyUSD: 1,
		types.CurrencyEUR: 0.85,
	}
}

// NewTable builds a conversion table. Rates must be positive.
func NewTable(rates map[types.Currency]float64) (*Table, error) {
	converted := make(map[types.Currency]decimal.Decimal, len(rates))

	for c, r := range rates {
		if r <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "rate for %s must be positive, got %v", c, r)
		}

		converted[c] = decimal.NewFromFloat(r)
	}

	return &Table{rates: converted}, nil
}

// Rate returns the multiplier for c.
func (t *Table) Rate(c types.Currency) (float64, error) {
	rate, ok := t.rates[c]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeUnknownCurrency, "no conversion rate for currency %s", c)
	}

	f, _ := rate.Float64()

	return f, nil
}

// Currencies lists the supported currencies in sorted order.
func (t *Table) Currencies() []types.Currency {
	out := make([]types.Currency, 0, len(t.rates))
	for c := range t.rates {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Convert lifts raw into a new derived series priced in c. Price is
// OriginalPrice times the rate rounded to two decimals; OriginalPrice is copied
// unchanged and every indicator field starts absent. The product is exact in
// decimal before rounding, so 0.1 EUR is 0.085 and rounds to 0.09.
func (t *Table) Convert(raw types.RawSeries, c types.Currency) (types.DerivedSeries, error) {
	rate, ok := t.rates[c]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownCurrency, "no conversion rate for currency %s", c)
	}

	out := make(types.DerivedSeries, len(raw))
	for i, p := range raw {
		point := p.Enrich()
		point.Price, _ = decimal.NewFromFloat(p.OriginalPrice).Mul(rate).Round(2).Float64()
		out[i] = point
	}

	return out, nil
}
