package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type PriceTestSuite struct {
	suite.Suite
}

func TestPriceSuite(t *testing.T) {
	suite.Run(t, new(PriceTestSuite))
}

func (suite *PriceTestSuite) TestEnrich() {
	ts := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
	raw := RawPricePoint{Time: "9:05", Timestamp: ts, OriginalPrice: 45012.5}

	point := raw.Enrich()
	suite.Equal("9:05", point.Time)
	suite.Equal(ts, point.Timestamp)
	suite.Equal(45012.5, point.Price)
	suite.Equal(45012.5, point.OriginalPrice)
	suite.True(point.MA.IsNone())
	suite.True(point.Upper.IsNone())
	suite.True(point.Lower.IsNone())
	suite.True(point.RSI.IsNone())
}

func (suite *PriceTestSuite) TestEnrichedPointJSONUsesNullForAbsentIndicators() {
	point := RawPricePoint{Time: "13:00", OriginalPrice: 100}.Enrich()
	point.RSI = optional.Some(55.5)

	data, err := json.Marshal(point)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal(data, &decoded))

	suite.Len(decoded, 7)
	suite.Equal("13:00", decoded["time"])
	suite.Equal(100.0, decoded["price"])
	suite.Equal(100.0, decoded["originalPrice"])
	suite.Nil(decoded["ma"])
	suite.Contains(decoded, "ma")
	suite.Contains(decoded, "upper")
	suite.Contains(decoded, "lower")
	suite.Equal(55.5, decoded["rsi"])
}

func (suite *PriceTestSuite) TestPricesAndClone() {
	series := DerivedSeries{
		RawPricePoint{Time: "9:00", OriginalPrice: 1}.Enrich(),
		RawPricePoint{Time: "9:05", OriginalPrice: 2}.Enrich(),
	}

	suite.Equal([]float64{1, 2}, series.Prices())

	clone := series.Clone()
	clone[0].Price = 99
	suite.Equal(1.0, series[0].Price)

	suite.Nil(DerivedSeries(nil).Clone())
}

func (suite *PriceTestSuite) TestCloneDetachesIndicatorValues() {
	point := RawPricePoint{Time: "9:00", OriginalPrice: 100}.Enrich()
	point.MA = optional.Some(101.5)
	point.Upper = optional.Some(110.0)
	point.Lower = optional.Some(93.0)
	point.RSI = optional.Some(55.5)
	series := DerivedSeries{point}

	clone := series.Clone()
	clone[0].MA[0] = -1
	clone[0].Upper[0] = -1
	clone[0].Lower[0] = -1
	clone[0].RSI[0] = -1

	suite.Equal(101.5, series[0].MA.Unwrap())
	suite.Equal(110.0, series[0].Upper.Unwrap())
	suite.Equal(93.0, series[0].Lower.Unwrap())
	suite.Equal(55.5, series[0].RSI.Unwrap())
	suite.True(clone.Clone()[0].MA.IsSome())

	empty := DerivedSeries{RawPricePoint{Time: "9:05", OriginalPrice: 1}.Enrich()}.Clone()
	suite.True(empty[0].MA.IsNone())
	suite.True(empty[0].RSI.IsNone())
}
