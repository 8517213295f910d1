package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-feed/internal/marketdata/generator"
	"github.com/rxtech-lab/argo-feed/internal/types"
)

// DataGenerator generates deterministic price series for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Pattern selects the shape of a generated series.
type Pattern string

const (
	// PatternRandom is a gaussian random walk
	PatternRandom Pattern = "random"
	// PatternUptrend rises by Step every point
	PatternUptrend Pattern = "uptrend"
	// PatternDowntrend falls by Step every point
	PatternDowntrend Pattern = "downtrend"
	// PatternFlat never moves
	PatternFlat Pattern = "flat"
	// PatternZigzag alternates +Step and -Step
	PatternZigzag Pattern = "zigzag"
)

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// Pattern is the shape of the series
	Pattern Pattern
	// StartTime is the timestamp of the first point
	StartTime time.Time
	// Interval is the duration between points
	Interval time.Duration
	// Count is the number of points to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Step is the per-point move for deterministic patterns
	Step float64
	// Volatility is the per-point relative standard deviation for PatternRandom
	Volatility float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Pattern:      PatternRandom,
		StartTime:    time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:     5 * time.Minute,
		Count:        30,
		InitialPrice: 100.0,
		Step:         1.0,
		Volatility:   0.01,
	}
}

// GenerateRaw creates a raw series based on the configuration.
func (g *DataGenerator) GenerateRaw(config GeneratorConfig) types.RawSeries {
	series := make(types.RawSeries, config.Count)
	price := config.InitialPrice
	ts := config.StartTime

	for i := 0; i < config.Count; i++ {
		if i > 0 {
			price = g.next(config, i, price)
		}

		series[i] = types.RawPricePoint{
			Time:          generator.FormatLabel(ts),
			Timestamp:     ts,
			OriginalPrice: roundToDecimals(price, 2),
		}

		ts = ts.Add(config.Interval)
	}

	return series
}

// Generate creates a derived series priced in the base currency with no indicators.
func (g *DataGenerator) Generate(config GeneratorConfig) types.DerivedSeries {
	raw := g.GenerateRaw(config)

	series := make(types.DerivedSeries, len(raw))
	for i, p := range raw {
		series[i] = p.Enrich()
	}

	return series
}

func (g *DataGenerator) next(config GeneratorConfig, i int, price float64) float64 {
	switch config.Pattern {
	case PatternUptrend:
		return price + config.Step
	case PatternDowntrend:
		return math.Max(generator.MinPrice, price-config.Step)
	case PatternFlat:
		return price
	case PatternZigzag:
		if i%2 == 1 {
			return price + config.Step
		}

		return price - config.Step
	default:
		// Box-Muller transform for a normally distributed move
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		return math.Max(generator.MinPrice, price*(1+config.Volatility*z))
	}
}

// SeriesFromPrices builds a derived series from literal prices, five minutes apart.
func SeriesFromPrices(prices ...float64) types.DerivedSeries {
	ts := DefaultConfig().StartTime
	series := make(types.DerivedSeries, len(prices))

	for i, p := range prices {
		series[i] = types.RawPricePoint{
			Time:          generator.FormatLabel(ts),
			Timestamp:     ts,
			OriginalPrice: p,
		}.Enrich()
		ts = ts.Add(5 * time.Minute)
	}

	return series
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
