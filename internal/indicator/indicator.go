package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
)

// Indicator is a pure transform over a whole derived series. Implementations
// return a new series of the same length and order and never modify their input.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters
	Config(params ...any) error
	// Compute derives the indicator fields for every point of series
	Compute(series types.DerivedSeries) (types.DerivedSeries, error)
}

// checkPrices rejects series containing prices no calculation can use.
func checkPrices(series types.DerivedSeries) error {
	for i, p := range series {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return errors.Newf(errors.ErrCodeInvalidPrice, "price at index %d (%s) is not a finite number", i, p.Time)
		}
	}

	return nil
}
