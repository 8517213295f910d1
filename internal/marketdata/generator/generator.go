package generator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-feed/internal/marketdata/profile"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
)

const (
	// MinPrice is the floor every step of the walk is clamped to.
	MinPrice = 0.1
	// DefaultStepIntervalMinutes is the spacing between generated points.
	DefaultStepIntervalMinutes = 5
)

// RandomWalkGenerator produces synthetic price series by Brownian motion.
// It is safe for concurrent use.
type RandomWalkGenerator struct {
	mu                  sync.Mutex
	rng                 *rand.Rand
	now                 func() time.Time
	stepIntervalMinutes int
}

// Option configures a RandomWalkGenerator.
type Option func(*RandomWalkGenerator)

// WithClock replaces time.Now as the reference the time labels count back from.
func WithClock(now func() time.Time) Option {
	return func(g *RandomWalkGenerator) {
		g.now = now
	}
}

// WithStepInterval sets the minutes between points. Values <= 0 keep the default.
func WithStepInterval(minutes int) Option {
	return func(g *RandomWalkGenerator) {
		if minutes > 0 {
			g.stepIntervalMinutes = minutes
		}
	}
}

// NewRandomWalkGenerator creates a generator with the given seed.
// A zero seed uses the current time, so every run walks differently.
func NewRandomWalkGenerator(seed int64, opts ...Option) *RandomWalkGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &RandomWalkGenerator{
		mu:                  sync.Mutex{},
		rng:                 rand.New(rand.NewSource(seed)),
		now:                 time.Now,
		stepIntervalMinutes: DefaultStepIntervalMinutes,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RandomWalk generates steps prices starting at startPrice. Each step adds
// U(-0.5, 0.5) * volatility to the previous running value and clamps the result
// at MinPrice before the next step. Emitted prices are rounded to two decimals
// while the walk keeps full precision. steps <= 0 yields an empty series.
func (g *RandomWalkGenerator) RandomWalk(startPrice float64, steps int, volatility float64, stepIntervalMinutes int) types.RawSeries {
	if steps <= 0 {
		return types.RawSeries{}
	}

	if stepIntervalMinutes <= 0 {
		stepIntervalMinutes = DefaultStepIntervalMinutes
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	interval := time.Duration(stepIntervalMinutes) * time.Minute
	series := make(types.RawSeries, steps)

	current := clamp(startPrice)
	for i := 0; i < steps; i++ {
		if i > 0 {
			current = clamp(current + (g.rng.Float64()-0.5)*volatility)
		}

		ts := now.Add(-time.Duration(steps-i) * interval)
		series[i] = types.RawPricePoint{
			Time:          FormatLabel(ts),
			Timestamp:     ts,
			OriginalPrice: utils.Round2(current),
		}
	}

	return series
}

// Generate implements the orchestrator's price source using the generator's
// configured step interval.
func (g *RandomWalkGenerator) Generate(ctx context.Context, p profile.Profile, steps int) (types.RawSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchCancelled, "random walk cancelled", err)
	}

	return g.RandomWalk(p.StartPrice, steps, p.Volatility, g.stepIntervalMinutes), nil
}

// FormatLabel renders t as H:MM on a 24 hour clock without hour padding.
func FormatLabel(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

func clamp(price float64) float64 {
	if price < MinPrice {
		return MinPrice
	}

	return price
}
