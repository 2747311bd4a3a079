package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketinsight/insight"
	"github.com/rustyeddy/marketinsight/internal/metrics"
	"github.com/rustyeddy/marketinsight/market"
)

const (
	// DefaultSymbol is the symbol a new session starts with.
	DefaultSymbol = "BANKNIFTY"

	// Period is the trailing window requested by both operations.
	Period = "3mo"

	StatusFetching   = "Fetching data..."
	StatusGenerating = "Generating report..."
)

// ErrBusy is returned when an operation is started while another is in flight.
var ErrBusy = errors.New("session: another request is in flight")

// API is the slice of the collaborator client a session needs.
type API interface {
	GetMarketData(ctx context.Context, symbol, period string) (*market.MarketData, error)
	GenerateReport(ctx context.Context, req insight.ReportRequest) (*insight.ReportResult, error)
}

// Session holds the symbol, status line, loading flag and market data of one
// user, and runs at most one request at a time.
type Session struct {
	api       API
	log       zerolog.Logger
	metrics   *metrics.Recorder
	observers []func(State)

	// reportDate is sent as report_date when set.
	reportDate string

	mu      sync.Mutex
	version uint64
	symbol  string
	status  string
	data    *market.MarketData
	report  *insight.ReportResult
	req     RequestState
}

// Option configures a Session.
type Option func(*Session)

// WithSymbol sets the initial symbol.
func WithSymbol(symbol string) Option {
	return func(s *Session) {
		s.symbol = symbol
	}
}

// WithObserver registers fn to receive a snapshot after every transition.
// fn runs on the goroutine that caused the transition and must not block.
func WithObserver(fn func(State)) Option {
	return func(s *Session) {
		s.observers = append(s.observers, fn)
	}
}

// WithReportDate pins GenerateReport to a YYYY-MM-DD date instead of the
// server's default.
func WithReportDate(date string) Option {
	return func(s *Session) {
		s.reportDate = date
	}
}

// WithLogger attaches a logger for operation start/finish.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithMetrics counts operations rejected as busy.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Session) {
		s.metrics = r
	}
}

// New creates an idle session backed by api.
func New(api API, opts ...Option) *Session {
	s := &Session{
		api:    api,
		log:    zerolog.Nop(),
		symbol: DefaultSymbol,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req.Phase == InFlight
}

// LastReport returns the result of the last successful report generation.
func (s *Session) LastReport() *insight.ReportResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// SetSymbol replaces the symbol. Any string is accepted, including "".
func (s *Session) SetSymbol(symbol string) {
	s.mu.Lock()
	s.symbol = symbol
	snap := s.advanceLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// FetchMarketData requests market data for the current symbol. The status
// line always reflects the outcome; the returned error lets callers branch
// on it. ErrBusy leaves the state untouched.
func (s *Session) FetchMarketData(ctx context.Context) error {
	symbol, err := s.begin(OpFetchMarketData, StatusFetching)
	if err != nil {
		return err
	}

	md, err := s.api.GetMarketData(ctx, symbol, Period)

	s.finish(OpFetchMarketData, symbol, err, func() {
		if err != nil {
			return
		}
		s.data = md
		s.status = fmt.Sprintf("Data fetched successfully for %s. Latest Price: %s",
			md.Symbol, md.PriceString())
	})
	return err
}

// GenerateReport asks the collaborator to build a report for the current
// symbol. It never touches the market data.
func (s *Session) GenerateReport(ctx context.Context) error {
	symbol, err := s.begin(OpGenerateReport, StatusGenerating)
	if err != nil {
		return err
	}

	res, err := s.api.GenerateReport(ctx, insight.ReportRequest{
		Symbol:     symbol,
		Period:     Period,
		ReportDate: s.reportDate,
	})

	s.finish(OpGenerateReport, symbol, err, func() {
		if err != nil {
			return
		}
		s.report = res
		s.status = fmt.Sprintf("Report generated successfully! Path: %s", res.ReportPath)
	})
	return err
}

// begin claims the request slot and publishes the in-flight state before
// any I/O happens.
func (s *Session) begin(op Op, status string) (string, error) {
	s.mu.Lock()
	if s.req.Phase == InFlight {
		running := s.req.Op
		s.mu.Unlock()

		s.metrics.RecordBusy()
		s.log.Debug().Stringer("op", op).Stringer("running", running).Msg("rejected: busy")
		return "", ErrBusy
	}

	s.req = RequestState{Phase: InFlight, Op: op}
	s.status = status
	if op == OpFetchMarketData {
		s.data = nil
	}
	symbol := s.symbol
	snap := s.advanceLocked()
	s.mu.Unlock()

	s.log.Info().Stringer("op", op).Str("symbol", symbol).Msg("started")
	s.notify(snap)
	return symbol, nil
}

// finish applies onOK (success only), sets the error status otherwise, and
// always releases the request slot. symbol is the one the request was sent
// for; the live symbol may have been edited since.
func (s *Session) finish(op Op, symbol string, err error, onOK func()) {
	s.mu.Lock()
	if err != nil {
		s.status = ErrorStatus(err)
	} else {
		onOK()
	}
	s.req = RequestState{Phase: Done, Op: op, Err: err}
	status := s.status
	snap := s.advanceLocked()
	s.mu.Unlock()

	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err).Bool("server_error", insight.IsServerError(err))
	}
	ev.Stringer("op", op).Str("symbol", symbol).Str("status", status).Msg("finished")

	s.notify(snap)
}

// ErrorStatus renders err for the status line: the server's message for
// server-reported errors, the error text for everything else.
func ErrorStatus(err error) string {
	return "Error: " + insight.ServerMessage(err)
}

func (s *Session) advanceLocked() State {
	s.version++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	return State{
		Version: s.version,
		Symbol:  s.symbol,
		Status:  s.status,
		Loading: s.req.Phase == InFlight,
		Data:    s.data,
		Report:  s.report,
		Request: s.req,
	}
}

func (s *Session) notify(st State) {
	for _, fn := range s.observers {
		fn(st)
	}
}
