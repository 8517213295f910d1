package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/mocks"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestNewBollingerBands() {
	bb := NewBollingerBands()
	suite.NotNil(bb)

	bbImpl := bb.(*BollingerBands)
	suite.Equal(10, bbImpl.period)
	suite.Equal(2.0, bbImpl.stdDev)
}

func (suite *BollingerBandsTestSuite) TestName() {
	suite.Equal(types.IndicatorTypeBollingerBands, NewBollingerBands().Name())
}

func (suite *BollingerBandsTestSuite) TestConfigValid() {
	bb := NewBollingerBands()
	bbImpl := bb.(*BollingerBands)

	err := bb.Config(20, 1.5)
	suite.NoError(err)
	suite.Equal(20, bbImpl.period)
	suite.Equal(1.5, bbImpl.stdDev)
}

func (suite *BollingerBandsTestSuite) TestConfigInvalid() {
	bb := NewBollingerBands()

	err := bb.Config(10)
	suite.Error(err)
	suite.Contains(err.Error(), "expects 2 parameters")

	err = bb.Config("invalid", 2.0)
	suite.Contains(err.Error(), "invalid type for period")

	err = bb.Config(0, 2.0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	err = bb.Config(10, "invalid")
	suite.Contains(err.Error(), "invalid type for stdDev")

	err = bb.Config(10, -1.0)
	suite.Contains(err.Error(), "stdDev must be a positive number")
}

func (suite *BollingerBandsTestSuite) TestKnownValues() {
	series := mocks.SeriesFromPrices(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)

	out, err := ComputeBollinger(series, 10)
	suite.Require().NoError(err)
	suite.Len(out, 12)

	expected := []struct{ ma, upper, lower float64 }{
		{5.5, 11.24, -0.24},
		{6.5, 12.24, 0.76},
		{7.5, 13.24, 1.76},
	}

	for k, e := range expected {
		p := out[9+k]
		suite.Equal(e.ma, p.MA.Unwrap())
		suite.Equal(e.upper, p.Upper.Unwrap())
		suite.Equal(e.lower, p.Lower.Unwrap())
	}
}

func (suite *BollingerBandsTestSuite) TestWarmupAndOrdering() {
	config := mocks.DefaultConfig()
	config.Count = 20
	series := mocks.NewDataGenerator(42).Generate(config)

	out, err := ComputeBollinger(series, 10)
	suite.Require().NoError(err)
	suite.Len(out, 20)

	for i, p := range out {
		if i < 9 {
			suite.True(p.MA.IsNone(), "index %d", i)
			suite.True(p.Upper.IsNone(), "index %d", i)
			suite.True(p.Lower.IsNone(), "index %d", i)

			continue
		}

		suite.True(p.MA.IsSome(), "index %d", i)
		suite.GreaterOrEqual(p.Upper.Unwrap(), p.MA.Unwrap())
		suite.GreaterOrEqual(p.MA.Unwrap(), p.Lower.Unwrap())
		suite.Equal(series[i].Time, p.Time)
		suite.Equal(series[i].Price, p.Price)
	}
}

func (suite *BollingerBandsTestSuite) TestFlatSeriesHasCollapsedBands() {
	config := mocks.DefaultConfig()
	config.Pattern = mocks.PatternFlat
	config.Count = 12

	out, err := ComputeBollinger(mocks.NewDataGenerator(1).Generate(config), 10)
	suite.Require().NoError(err)

	last := out[11]
	suite.Equal(100.0, last.MA.Unwrap())
	suite.Equal(100.0, last.Upper.Unwrap())
	suite.Equal(100.0, last.Lower.Unwrap())
}

func (suite *BollingerBandsTestSuite) TestShortSeriesHasNoBands() {
	out, err := ComputeBollinger(mocks.SeriesFromPrices(1, 2, 3), 10)
	suite.NoError(err)
	suite.Len(out, 3)

	for _, p := range out {
		suite.True(p.MA.IsNone())
	}

	empty, err := ComputeBollinger(types.DerivedSeries{}, 10)
	suite.NoError(err)
	suite.Empty(empty)
}

func (suite *BollingerBandsTestSuite) TestWindowOfOne() {
	out, err := ComputeBollinger(mocks.SeriesFromPrices(3, 7), 1)
	suite.NoError(err)
	suite.Equal(7.0, out[1].MA.Unwrap())
	suite.Equal(7.0, out[1].Upper.Unwrap())
}

func (suite *BollingerBandsTestSuite) TestDoesNotMutateInputAndIsIdempotent() {
	config := mocks.DefaultConfig()
	config.Count = 30
	series := mocks.NewDataGenerator(7).Generate(config)
	before := series.Clone()

	first, err := ComputeBollinger(series, 10)
	suite.Require().NoError(err)
	second, err := ComputeBollinger(series, 10)
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.Equal(before, series)
	suite.True(series[20].MA.IsNone())
}

func (suite *BollingerBandsTestSuite) TestInvalidInputs() {
	_, err := ComputeBollinger(mocks.SeriesFromPrices(1, 2), 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = ComputeBollinger(mocks.SeriesFromPrices(1, math.NaN(), 3), 2)
	suite.True(errors.IsDataError(err))

	_, err = ComputeBollinger(mocks.SeriesFromPrices(math.Inf(1)), 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))
}

func (suite *BollingerBandsTestSuite) TestComputeUsesConfiguredWidth() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(10, 1.0))

	out, err := bb.Compute(mocks.SeriesFromPrices(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	suite.Require().NoError(err)
	// sigma of 1..10 is 2.8723
	suite.Equal(8.37, out[9].Upper.Unwrap())
	suite.Equal(2.63, out[9].Lower.Unwrap())
}
