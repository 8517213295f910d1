package refresher

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"go.uber.org/zap"
)

// Target is regenerated on every tick.
type Target interface {
	Refresh(ctx context.Context) error
}

// Refresher triggers Target.Refresh on a cron schedule. Standard five-field
// specs and descriptors such as "@every 30s" are accepted.
type Refresher struct {
	cron    *cron.Cron
	target  Target
	spec    string
	logger  *logger.Logger
	ctx     context.Context
	mu      sync.Mutex
	running bool
}

// New validates spec and registers the refresh job. An empty spec yields a
// disabled Refresher whose Start and Stop are no-ops.
func New(ctx context.Context, spec string, target Target, log *logger.Logger) (*Refresher, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	r := &Refresher{
		target: target,
		spec:   spec,
		logger: log,
		ctx:    ctx,
	}

	if spec == "" {
		return r, nil
	}

	cl := cronLogger{log: log.Sugar()}
	r.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := r.cron.AddFunc(spec, r.RunNow); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidSchedule, err, "invalid refresh schedule %q", spec)
	}

	return r, nil
}

// Enabled reports whether a schedule was configured.
func (r *Refresher) Enabled() bool {
	return r.cron != nil
}

// Start begins running the schedule in the background.
func (r *Refresher) Start() {
	if r.cron == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	r.running = true
	r.cron.Start()
	r.logger.Info("Refresh schedule started", zap.String("schedule", r.spec))
}

// Stop halts the schedule and waits for a running refresh to return.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	r.running = false
	<-r.cron.Stop().Done()
	r.logger.Info("Refresh schedule stopped")
}

// RunNow refreshes the target immediately. Errors are logged.
func (r *Refresher) RunNow() {
	if err := r.target.Refresh(r.ctx); err != nil {
		r.logger.Warn("Scheduled refresh failed", zap.Error(err))

		return
	}

	r.logger.Debug("Scheduled refresh started")
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
