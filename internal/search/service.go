// Package search turns a stream of query edits into debounced searches.
//
// Two timers run independently. The search timer (quiet period plus a
// maxWait ceiling) issues a search for the last scheduled query. The reset
// timer (quiet period only) returns the controller to Idle when the query
// has been cleared.
package search

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"moviegrip/internal/async"
	"moviegrip/internal/debounce"
	"moviegrip/internal/domain"
	"moviegrip/internal/eventbus"
)

// Searcher is the provider the service calls; *omdb.Client satisfies it
type Searcher interface {
	Search(ctx context.Context, term string) ([]domain.Movie, error)
}

// Metrics is the subset of metrics.Recorder the service reports to
type Metrics interface {
	SearchIssued()
	TimerFired(timer, reason string)
}

// Policy decides what happens to queries shorter than MinQueryLength
type Policy string

const (
	// PolicyFilter treats short queries like the empty query
	PolicyFilter Policy = "filter"
	// PolicySurface sends short queries to the provider, which rejects them
	PolicySurface Policy = "surface"
)

// ParsePolicy maps a config value to a Policy; empty means PolicyFilter
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyFilter:
		return PolicyFilter, nil
	case PolicySurface:
		return PolicySurface, nil
	default:
		return "", fmt.Errorf("unknown short query policy %q", s)
	}
}

// Timer names used for metrics labels
const (
	TimerSearch = "search"
	TimerReset  = "reset"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultMaxWait        = 2000 * time.Millisecond
	DefaultResetDebounce  = 500 * time.Millisecond
	DefaultMinQueryLength = 3
)

// Options configures a Service. Zero durations take the defaults above.
type Options struct {
	Debounce       time.Duration
	MaxWait        time.Duration // negative disables the ceiling
	ResetDebounce  time.Duration
	MinQueryLength int
	Policy         Policy

	Context context.Context // passed to every search; nil means context.Background()
	Bus     eventbus.EventBus
	Metrics Metrics
	Clock   debounce.Clock
	Logger  *log.Logger
}

func (o *Options) applyDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.MaxWait == 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.MaxWait < 0 {
		o.MaxWait = 0
	}
	if o.ResetDebounce <= 0 {
		o.ResetDebounce = DefaultResetDebounce
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.Policy == "" {
		o.Policy = PolicyFilter
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Service owns the debounce timers and drives one controller
type Service struct {
	searcher Searcher
	ctrl     *async.Controller[[]domain.Movie]
	opts     Options

	searchTimer *debounce.Debouncer
	resetTimer  *debounce.Debouncer

	mu        sync.Mutex
	query     string
	closeOnce sync.Once
}

// NewService wires searcher to ctrl. The service takes ownership of ctrl and
// disposes it on Close.
func NewService(searcher Searcher, ctrl *async.Controller[[]domain.Movie], opts Options) *Service {
	opts.applyDefaults()
	s := &Service{
		searcher: searcher,
		ctrl:     ctrl,
		opts:     opts,
	}

	searchOpts := []debounce.Option{
		debounce.WithClock(opts.Clock),
		debounce.WithOnFire(s.fired(TimerSearch)),
	}
	if opts.MaxWait > 0 {
		searchOpts = append(searchOpts, debounce.WithMaxWait(opts.MaxWait))
	}
	s.searchTimer = debounce.New(opts.Debounce, searchOpts...)
	s.resetTimer = debounce.New(opts.ResetDebounce,
		debounce.WithClock(opts.Clock),
		debounce.WithOnFire(s.fired(TimerReset)),
	)
	return s
}

// SetQuery records the latest query and arms the matching timer
func (s *Service) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()

	if s.resets(q) {
		s.resetTimer.Call(s.reset)
		s.publish(eventbus.SearchScheduledEvent{Query: q, Reset: true})
		return
	}

	// A reset armed by an earlier, shorter prefix would wipe this search's result
	s.resetTimer.Cancel()
	s.searchTimer.Call(func() { s.issue(q) })
	s.publish(eventbus.SearchScheduledEvent{Query: q})
}

// Query returns the last query given to SetQuery
func (s *Service) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Flush issues a scheduled search now instead of waiting for the timer
func (s *Service) Flush() {
	s.searchTimer.Flush()
}

// State returns the controller's current state
func (s *Service) State() async.State[[]domain.Movie] {
	return s.ctrl.State()
}

// Close stops both timers and disposes the controller. Safe to call twice.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		s.searchTimer.Stop()
		s.resetTimer.Stop()
		s.ctrl.Dispose()
		s.opts.Logger.Printf("Search: service closed")
	})
}

// resets reports whether q arms the reset timer instead of a search
func (s *Service) resets(q string) bool {
	if q == "" {
		return true
	}
	return s.opts.Policy == PolicyFilter && utf8.RuneCountInString(q) < s.opts.MinQueryLength
}

func (s *Service) issue(q string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SearchIssued()
	}

	op := func(ctx context.Context) ([]domain.Movie, error) {
		return s.searcher.Search(ctx, q)
	}
	onSuccess := func(movies []domain.Movie) {
		s.opts.Logger.Printf("Search: %q returned %d results", q, len(movies))
	}
	onFailure := func(msg string) {
		s.opts.Logger.Printf("Search: %q failed: %s", q, msg)
	}

	seq := s.ctrl.Run(s.opts.Context, op, onSuccess, onFailure)
	if seq == 0 {
		return
	}
	s.opts.Logger.Printf("Search: issuing search for %q (run %d)", q, seq)
	s.publish(eventbus.SearchIssuedEvent{Query: q, Sequence: seq})
}

func (s *Service) reset() {
	s.ctrl.Reset()
	s.opts.Logger.Printf("Search: query cleared, state reset")
	s.publish(eventbus.SearchResetEvent{})
}

func (s *Service) fired(timer string) func(string) {
	return func(reason string) {
		if s.opts.Metrics != nil {
			s.opts.Metrics.TimerFired(timer, reason)
		}
	}
}

func (s *Service) publish(e eventbus.DomainEvent) {
	if s.opts.Bus != nil {
		s.opts.Bus.Publish(e)
	}
}
