package watch

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketinsight/session"
)

// Runner is the part of a session the watcher drives.
type Runner interface {
	FetchMarketData(ctx context.Context) error
	GenerateReport(ctx context.Context) error
	Snapshot() session.State
}

// Watcher refreshes market data on a cron schedule.
type Watcher struct {
	cron           *cron.Cron
	sess           Runner
	log            zerolog.Logger
	generateReport bool
	ctx            context.Context
	results        chan<- session.State
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithReport also generates a report after each successful fetch.
func WithReport(enabled bool) Option {
	return func(w *Watcher) {
		w.generateReport = enabled
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// WithResults sends the session state after each run to ch. Sends never
// block; a full channel drops the result.
func WithResults(ch chan<- session.State) Option {
	return func(w *Watcher) {
		w.results = ch
	}
}

// New registers the refresh job on schedule. Standard 5-field expressions,
// 6-field expressions with seconds, and descriptors like "@every 5m" are accepted.
func New(ctx context.Context, sess Runner, schedule string, opts ...Option) (*Watcher, error) {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	w := &Watcher{
		sess: sess,
		log:  zerolog.Nop(),
		ctx:  ctx,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.cron = cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := w.cron.AddFunc(schedule, w.RunNow); err != nil {
		return nil, fmt.Errorf("register watch schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start starts the scheduler in the background.
func (w *Watcher) Start() {
	w.cron.Start()
	w.log.Info().Msg("watch started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info().Msg("watch stopped")
}

// RunNow performs one refresh immediately.
func (w *Watcher) RunNow() {
	err := w.sess.FetchMarketData(w.ctx)
	switch {
	case errors.Is(err, session.ErrBusy):
		w.log.Warn().Msg("refresh skipped: request in flight")
		return
	case err == nil && w.generateReport:
		if rerr := w.sess.GenerateReport(w.ctx); errors.Is(rerr, session.ErrBusy) {
			w.log.Warn().Msg("report skipped: request in flight")
		}
	}

	st := w.sess.Snapshot()
	w.log.Info().Str("symbol", st.Symbol).Str("status", st.Status).Msg("refresh")

	if w.results != nil {
		select {
		case w.results <- st:
		default:
		}
	}
}
