// Package orchestrator keeps the raw and derived market data caches in step
// with the dashboard filters.
//
// The raw series is regenerated whenever the asset or timeframe changes and
// is fetched asynchronously. Every fetch is tagged with a generation number
// and only the fetch carrying the newest generation may commit, so responses
// arriving out of order never overwrite a fresher selection. The derived
// series is recomputed synchronously from the cached raw series whenever the
// raw series is replaced or the currency changes.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-feed/internal/currency"
	"github.com/rxtech-lab/argo-feed/internal/indicator"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/marketdata/profile"
	"github.com/rxtech-lab/argo-feed/internal/metrics"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"go.uber.org/zap"
)

// DefaultFetchDelay simulates the network latency of a real market data call.
const DefaultFetchDelay = 600 * time.Millisecond

// PriceSource produces a raw series for a profile.
type PriceSource interface {
	Generate(ctx context.Context, p profile.Profile, steps int) (types.RawSeries, error)
}

// Config holds the collaborators of an Orchestrator.
type Config struct {
	Source   PriceSource
	Profiles *profile.Book
	Rates    *currency.Table
	Pipeline *indicator.Pipeline
	// FetchDelay is waited before every fetch. Zero disables the delay.
	FetchDelay time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

// fetchRequest identifies one in-flight raw series fetch.
type fetchRequest struct {
	generation uint64
	id         string
	filters    types.FilterState
	profile    profile.Profile
}

// Orchestrator owns the filter state, both cache tiers and the generation counter.
// All methods are safe for concurrent use.
type Orchestrator struct {
	mu sync.Mutex

	source     PriceSource
	profiles   *profile.Book
	rates      *currency.Table
	pipeline   *indicator.Pipeline
	fetchDelay time.Duration
	logger     *logger.Logger
	metrics    *metrics.Metrics

	filters    types.FilterState
	hasFilters bool
	raw        types.RawSeries
	derived    types.DerivedSeries
	loading    bool
	generation uint64
	requestID  string
	err        error

	subscribers map[int]chan types.Snapshot
	nextSubID   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates an Orchestrator. Source, Profiles, Rates and Pipeline are required.
func New(config Config) (*Orchestrator, error) {
	if config.Source == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires a price source")
	}

	if config.Profiles == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires a profile book")
	}

	if config.Rates == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires a currency table")
	}

	if config.Pipeline == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires an indicator pipeline")
	}

	if config.FetchDelay < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "fetch delay must not be negative, got %s", config.FetchDelay)
	}

	log := config.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		mu:          sync.Mutex{},
		source:      config.Source,
		profiles:    config.Profiles,
		rates:       config.Rates,
		pipeline:    config.Pipeline,
		fetchDelay:  config.FetchDelay,
		logger:      log,
		metrics:     config.Metrics,
		subscribers: make(map[int]chan types.Snapshot),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// OnFilterChange applies a new filter state. An asset or timeframe change
// starts a new fetch and returns immediately; a currency-only change
// re-derives from the cached raw series before returning. Invalid filters and
// unresolvable assets return a configuration error and leave the state as it was.
func (o *Orchestrator) OnFilterChange(ctx context.Context, next types.FilterState) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeFetchCancelled, "filter change cancelled", err)
	}

	if err := next.Validate(); err != nil {
		return err
	}

	if _, err := o.rates.Rate(next.Currency); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return errors.New(errors.ErrCodeOrchestratorClosed, "orchestrator is closed")
	}

	switch {
	case !o.hasFilters || o.filters.RequiresRegeneration(next):
		return o.startFetchLocked(next)
	case o.filters.Currency != next.Currency:
		return o.changeCurrencyLocked(next)
	default:
		return nil
	}
}

// Refresh regenerates the raw series for the current filters under a new generation.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeFetchCancelled, "refresh cancelled", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return errors.New(errors.ErrCodeOrchestratorClosed, "orchestrator is closed")
	}

	if !o.hasFilters {
		return errors.New(errors.ErrCodeMissingParameter, "no filters have been applied yet")
	}

	return o.startFetchLocked(o.filters)
}

func (o *Orchestrator) startFetchLocked(next types.FilterState) error {
	p, err := o.profiles.Resolve(next.Asset)
	if err != nil {
		return err
	}

	o.generation++
	o.filters = next
	o.hasFilters = true
	o.loading = true
	o.requestID = uuid.New().String()

	req := fetchRequest{
		generation: o.generation,
		id:         o.requestID,
		filters:    next,
		profile:    p,
	}

	o.metrics.RegenerationStarted()
	o.logger.Debug("Starting raw series fetch",
		zap.Uint64("generation", req.generation),
		zap.String("request_id", req.id),
		zap.String("asset", string(next.Asset)),
		zap.String("timeframe", string(next.Timeframe)),
	)

	o.publishLocked()

	o.wg.Add(1)

	go o.fetch(req)

	return nil
}

func (o *Orchestrator) changeCurrencyLocked(next types.FilterState) error {
	if o.raw == nil {
		// the pending fetch derives with whatever currency is current at commit
		o.filters = next
		o.publishLocked()

		return nil
	}

	derived, err := o.deriveLocked(o.raw, next.Currency)
	if err != nil {
		return err
	}

	o.filters = next
	o.derived = derived
	o.metrics.Derived(metrics.TriggerCurrency)
	o.publishLocked()

	return nil
}

func (o *Orchestrator) fetch(req fetchRequest) {
	defer o.wg.Done()

	start := time.Now()

	raw, err := o.runSource(req)
	o.metrics.FetchFinished(time.Since(start), err)

	o.commit(req, raw, err)
}

func (o *Orchestrator) runSource(req fetchRequest) (types.RawSeries, error) {
	if o.fetchDelay > 0 {
		timer := time.NewTimer(o.fetchDelay)
		defer timer.Stop()

		select {
		case <-o.ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeFetchCancelled, "fetch cancelled during delay", o.ctx.Err())
		case <-timer.C:
		}
	}

	raw, err := o.source.Generate(o.ctx, req.profile, req.filters.Timeframe.Steps())
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknown {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "fetch %s failed", req.id)
		}

		return nil, err
	}

	return raw, nil
}

// commit applies a finished fetch if no newer fetch has started since.
func (o *Orchestrator) commit(req fetchRequest, raw types.RawSeries, fetchErr error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	if req.generation != o.generation {
		o.metrics.StaleDiscarded()
		o.logger.Debug("Discarding stale raw series",
			zap.Uint64("generation", req.generation),
			zap.Uint64("current_generation", o.generation),
			zap.String("request_id", req.id),
		)

		return
	}

	o.loading = false
	o.metrics.LoadingDone()

	if fetchErr != nil {
		o.err = fetchErr
		o.logger.Error("Raw series fetch failed",
			zap.Uint64("generation", req.generation),
			zap.String("request_id", req.id),
			zap.Error(fetchErr),
		)
		o.publishLocked()

		return
	}

	o.raw = raw
	o.err = nil

	derived, err := o.deriveLocked(raw, o.filters.Currency)
	if err != nil {
		o.err = err
		o.logger.Error("Derived series recompute failed",
			zap.Uint64("generation", req.generation),
			zap.Error(err),
		)
		o.publishLocked()

		return
	}

	o.derived = derived
	o.metrics.Derived(metrics.TriggerRaw)
	o.logger.Debug("Committed raw series",
		zap.Uint64("generation", req.generation),
		zap.String("request_id", req.id),
		zap.Int("points", len(raw)),
	)
	o.publishLocked()
}

// deriveLocked converts raw into c and runs the indicator pipeline over it.
func (o *Orchestrator) deriveLocked(raw types.RawSeries, c types.Currency) (types.DerivedSeries, error) {
	converted, err := o.rates.Convert(raw, c)
	if err != nil {
		return nil, err
	}

	return o.pipeline.Apply(converted)
}

// DerivedSeries returns a copy of the current derived series. It is nil until
// the first fetch commits.
func (o *Orchestrator) DerivedSeries() types.DerivedSeries {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.derived.Clone()
}

// IsLoading reports whether a fetch for the current generation is outstanding.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.loading
}

// CurrentFilters returns the last accepted filter state and whether one exists.
func (o *Orchestrator) CurrentFilters() (types.FilterState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.filters, o.hasFilters
}

// Generation returns the generation of the most recently started fetch.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.generation
}

// Err returns the error of the last committed fetch, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.err
}

// Snapshot returns the current state as a consumer would render it.
func (o *Orchestrator) Snapshot() types.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() types.Snapshot {
	points := o.derived.Clone()
	if points == nil {
		points = types.DerivedSeries{}
	}

	return types.Snapshot{
		Filters:    o.filters,
		Loading:    o.loading,
		Generation: o.generation,
		RequestID:  o.requestID,
		Points:     points,
	}
}

// Subscribe returns a channel receiving a snapshot after every state change
// and a function that ends the subscription. The channel holds only the
// latest snapshot; a slow reader skips intermediate ones but never sees them
// out of order.
func (o *Orchestrator) Subscribe() (<-chan types.Snapshot, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch := make(chan types.Snapshot, 1)
	if o.closed {
		close(ch)

		return ch, func() {}
	}

	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = ch
	o.metrics.SubscriberAdded()

	if o.hasFilters {
		ch <- o.snapshotLocked()
	}

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()

			if sub, ok := o.subscribers[id]; ok {
				delete(o.subscribers, id)
				close(sub)
				o.metrics.SubscriberRemoved()
			}
		})
	}
}

func (o *Orchestrator) publishLocked() {
	if len(o.subscribers) == 0 {
		return
	}

	snap := o.snapshotLocked()

	for _, ch := range o.subscribers {
		// drop the unread snapshot so the newest one always fits
		select {
		case <-ch:
		default:
		}

		// each subscriber owns its points
		own := snap
		own.Points = snap.Points.Clone()
		ch <- own
	}
}

// Wait blocks until every fetch started so far has committed or been discarded.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels in-flight fetches, waits for them and closes every subscription.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()

		return
	}

	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()

	for id, ch := range o.subscribers {
		delete(o.subscribers, id)
		close(ch)
		o.metrics.SubscriberRemoved()
	}

	o.logger.Debug("Orchestrator closed", zap.Uint64("generation", o.generation))
}
