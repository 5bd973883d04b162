package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"emarknews/internal/enrich"
	"emarknews/internal/news"
	"emarknews/internal/provider"
	"emarknews/internal/store"
)

const (
	// Version is reported in every system status block.
	Version = "11.0.0-translation-fixed"

	DefaultTTL = 10 * time.Minute
	resultCap  = 25
)

// Branch names used in logs, status and the refresh audit log.
const (
	BranchWorld    = "world"
	BranchKorea    = "korea"
	BranchJapan    = "japan"
	BranchExchange = "exchange"
)

// ErrTotalFailure means a refresh panicked before a result could be assembled.
var ErrTotalFailure = errors.New("aggregate: refresh failed")

var features = []string{"enhanced-translation", "ai-fallback", "basic-translation", "mobile-optimized"}

// Sections holds the three news sections.
type Sections struct {
	World []news.Article `json:"world"`
	Korea []news.Article `json:"korea"`
	Japan []news.Article `json:"japan"`
}

// SystemStatus is the snapshot embedded in every result.
type SystemStatus struct {
	Version    string                     `json:"version"`
	LastUpdate time.Time                  `json:"lastUpdate"`
	CacheSize  int                        `json:"cacheSize"`
	Features   []string                   `json:"features"`
	APIMetrics map[string]provider.Report `json:"apiMetrics"`
	APISources map[string]bool            `json:"apiSources"`
	Degraded   []string                   `json:"degraded,omitempty"`
}

// Result is one complete aggregate. It is replaced wholesale, never mutated.
type Result struct {
	Sections      Sections                 `json:"sections"`
	Trending      []enrich.TrendingKeyword `json:"trending"`
	ExchangeRates news.ExchangeRates       `json:"exchangeRates"`
	SystemStatus  SystemStatus             `json:"systemStatus"`
}

// Health is the lightweight liveness view of the cache.
type Health struct {
	CacheSize  int        `json:"cacheSize"`
	LastUpdate *time.Time `json:"lastUpdate"`
	InProgress bool       `json:"inProgress"`
}

// Status is the detailed operational view.
type Status struct {
	Version       string                             `json:"version"`
	LastUpdate    *time.Time                         `json:"lastUpdate"`
	CacheSize     int                                `json:"cacheSize"`
	InProgress    bool                               `json:"inProgress"`
	Features      []string                           `json:"features"`
	APIMetrics    map[string]provider.Report         `json:"apiMetrics"`
	RateLimits    map[string]provider.RateLimitState `json:"rateLimits"`
	APISources    map[string]bool                    `json:"apiSources"`
	Degraded      []string                           `json:"degraded"`
	UptimeSeconds int64                              `json:"uptime"`
}

// RunRecorder persists finished refreshes.
type RunRecorder interface {
	SaveRun(ctx context.Context, run store.Run) error
}

type entry struct {
	result   Result
	cachedAt time.Time
}

// Aggregator owns the single cached aggregate and the refresh that builds it.
type Aggregator struct {
	collector Collector
	limiter   *provider.RateLimiter
	metrics   *provider.Recorder
	runs      RunRecorder
	sources   map[string]bool
	logger    *slog.Logger
	now       func() time.Time
	ttl       time.Duration
	started   time.Time

	mu         sync.RWMutex
	entry      *entry
	lastUpdate time.Time
	degraded   []string

	inflight atomic.Int32
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(a *Aggregator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithClock replaces the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRunRecorder records every finished refresh.
func WithRunRecorder(r RunRecorder) Option {
	return func(a *Aggregator) {
		a.runs = r
	}
}

// WithAPISources sets the configured-provider flags shown by Status.
func WithAPISources(sources map[string]bool) Option {
	return func(a *Aggregator) {
		a.sources = sources
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator builds an aggregator with an empty cache.
func NewAggregator(collector Collector, limiter *provider.RateLimiter, metrics *provider.Recorder, opts ...Option) *Aggregator {
	a := &Aggregator{
		collector: collector,
		limiter:   limiter,
		metrics:   metrics,
		logger:    slog.Default(),
		now:       time.Now,
		ttl:       DefaultTTL,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = provider.NewRecorder()
	}
	a.started = a.now()
	return a
}

// Get returns the cached aggregate, refreshing it when forced, missing or
// older than the TTL. A non-forced call that finds a refresh already running
// returns the current value without waiting. Get never fails: when a refresh
// cannot produce a result the previous one, or the static default, is served.
func (a *Aggregator) Get(ctx context.Context, force bool) Result {
	if !force {
		if res, ok := a.fresh(); ok {
			return res
		}
		if !a.inflight.CompareAndSwap(0, 1) {
			a.logger.Debug("refresh already in progress, serving current value")
			return a.current()
		}
	} else {
		a.inflight.Add(1)
	}
	defer a.inflight.Add(-1)

	if !force {
		// another caller may have finished a refresh between the checks
		if res, ok := a.fresh(); ok {
			return res
		}
	}
	return a.refresh(context.WithoutCancel(ctx), force)
}

// Metrics reports per-provider call statistics.
func (a *Aggregator) Metrics() map[string]provider.Report {
	return a.metrics.Report()
}

// Health reports cache occupancy and refresh activity.
func (a *Aggregator) Health() Health {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Health{
		CacheSize:  a.cacheSizeLocked(),
		LastUpdate: a.lastUpdateLocked(),
		InProgress: a.inflight.Load() > 0,
	}
}

// Status reports everything Health does plus metrics, rate-limit windows,
// configured sources and the branches that degraded on the last refresh.
func (a *Aggregator) Status() Status {
	a.mu.RLock()
	st := Status{
		Version:    Version,
		LastUpdate: a.lastUpdateLocked(),
		CacheSize:  a.cacheSizeLocked(),
		InProgress: a.inflight.Load() > 0,
		Features:   append([]string(nil), features...),
		APISources: a.apiSources(),
		Degraded:   append([]string{}, a.degraded...),
	}
	a.mu.RUnlock()

	st.APIMetrics = a.metrics.Report()
	st.RateLimits = map[string]provider.RateLimitState{}
	if a.limiter != nil {
		st.RateLimits = a.limiter.Snapshot()
	}
	st.UptimeSeconds = int64(a.now().Sub(a.started).Seconds())
	return st
}

// Warm fills the cache once after delay unless ctx ends first.
func (a *Aggregator) Warm(ctx context.Context, delay time.Duration) {
	if err := pause(ctx, delay); err != nil {
		return
	}
	res := a.Get(ctx, false)
	a.logger.Info("cache warmed",
		"world", len(res.Sections.World),
		"korea", len(res.Sections.Korea),
		"japan", len(res.Sections.Japan),
	)
}

// Schedule forces a refresh every interval until ctx ends. A non-positive
// interval disables it.
func (a *Aggregator) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Get(ctx, true)
		}
	}
}

func (a *Aggregator) fresh() (Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.entry == nil {
		return Result{}, false
	}
	if a.now().Sub(a.entry.cachedAt) >= a.ttl {
		return Result{}, false
	}
	return a.entry.result, true
}

func (a *Aggregator) current() Result {
	a.mu.RLock()
	e := a.entry
	a.mu.RUnlock()
	if e != nil {
		return e.result
	}
	res := DefaultResult(a.now())
	res.SystemStatus.APIMetrics = a.metrics.Report()
	res.SystemStatus.APISources = a.apiSources()
	return res
}

func (a *Aggregator) apiSources() map[string]bool {
	out := make(map[string]bool, len(a.sources))
	for k, v := range a.sources {
		out[k] = v
	}
	return out
}

func (a *Aggregator) cacheSizeLocked() int {
	if a.entry == nil {
		return 0
	}
	return 1
}

func (a *Aggregator) lastUpdateLocked() *time.Time {
	if a.lastUpdate.IsZero() {
		return nil
	}
	t := a.lastUpdate
	return &t
}

func (a *Aggregator) refresh(ctx context.Context, force bool) Result {
	started := a.now()
	a.logger.Info("refresh started", "forced", force)

	res, degraded, err := a.build(ctx)
	finished := a.now()

	run := store.Run{
		StartedAt:      started,
		FinishedAt:     finished,
		DurationMs:     finished.Sub(started).Milliseconds(),
		Forced:         force,
		FailedBranches: strings.Join(degraded, ","),
	}

	if err != nil {
		a.logger.Error("refresh failed, serving previous value", "error", err, "duration", finished.Sub(started))
		run.Outcome = store.OutcomeFailed
		run.Error = err.Error()
		a.mu.Lock()
		a.degraded = degraded
		a.mu.Unlock()
		a.record(ctx, run)
		return a.current()
	}

	res.SystemStatus.LastUpdate = finished
	res.SystemStatus.CacheSize = 1

	a.mu.Lock()
	a.entry = &entry{result: res, cachedAt: finished}
	a.lastUpdate = finished
	a.degraded = degraded
	a.mu.Unlock()

	run.Outcome = store.OutcomeOK
	if len(degraded) > 0 {
		run.Outcome = store.OutcomePartial
	}
	run.WorldCount = len(res.Sections.World)
	run.KoreaCount = len(res.Sections.Korea)
	run.JapanCount = len(res.Sections.Japan)
	run.TrendingCount = len(res.Trending)
	run.RatesSource = res.ExchangeRates.Source
	a.record(ctx, run)

	a.logger.Info("refresh finished",
		"outcome", run.Outcome,
		"world", run.WorldCount,
		"korea", run.KoreaCount,
		"japan", run.JapanCount,
		"degraded", degraded,
		"duration", finished.Sub(started),
	)
	return res
}

// build fans out to every branch. Branch failures are isolated and yield
// empty sections or default rates; only a panic outside the branches is fatal.
func (a *Aggregator) build(ctx context.Context) (res Result, degraded []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrTotalFailure, r)
		}
	}()

	var (
		world, korea, japan []news.Article
		rates               news.ExchangeRates
		failures            [4]error
		g                   errgroup.Group
	)

	g.Go(a.branch(ctx, BranchWorld, &failures[0], func(ctx context.Context) (err error) {
		world, err = a.collector.World(ctx)
		return err
	}))
	g.Go(a.branch(ctx, BranchKorea, &failures[1], func(ctx context.Context) (err error) {
		korea, err = a.collector.Korea(ctx)
		return err
	}))
	g.Go(a.branch(ctx, BranchJapan, &failures[2], func(ctx context.Context) (err error) {
		japan, err = a.collector.Japan(ctx)
		return err
	}))
	g.Go(a.branch(ctx, BranchExchange, &failures[3], func(ctx context.Context) (err error) {
		rates, err = a.collector.ExchangeRates(ctx)
		return err
	}))
	_ = g.Wait()

	names := [4]string{BranchWorld, BranchKorea, BranchJapan, BranchExchange}
	for i, ferr := range failures {
		if ferr != nil {
			degraded = append(degraded, names[i])
		}
	}
	if failures[0] != nil && failures[1] != nil && failures[2] != nil {
		a.logger.Error("every news section failed, caching empty sections",
			"error", errors.Join(failures[:3]...))
	}

	if failures[0] != nil {
		world = nil
	}
	if failures[1] != nil {
		korea = nil
	}
	if failures[2] != nil {
		japan = nil
	}
	if rates.Source == "" {
		rates = news.DefaultRates(a.now())
	}

	sections := Sections{
		World: capArticles(world),
		Korea: capArticles(korea),
		Japan: capArticles(japan),
	}

	all := make([]news.Article, 0, len(sections.World)+len(sections.Korea)+len(sections.Japan))
	all = append(all, sections.World...)
	all = append(all, sections.Korea...)
	all = append(all, sections.Japan...)

	return Result{
		Sections:      sections,
		Trending:      enrich.Trending(all),
		ExchangeRates: rates,
		SystemStatus: SystemStatus{
			Version:    Version,
			Features:   append([]string(nil), features...),
			APIMetrics: a.metrics.Report(),
			APISources: a.apiSources(),
			Degraded:   degraded,
		},
	}, degraded, nil
}

// branch adapts a collector call for the errgroup. It never returns an
// error so one branch cannot affect the others.
func (a *Aggregator) branch(ctx context.Context, name string, failed *error, run func(context.Context) error) func() error {
	return func() error {
		if err := safely(ctx, run); err != nil {
			a.logger.Warn("refresh branch degraded", "branch", name, "error", err)
			*failed = err
		}
		return nil
	}
}

func safely(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(ctx)
}

func (a *Aggregator) record(ctx context.Context, run store.Run) {
	if a.runs == nil {
		return
	}
	if err := a.runs.SaveRun(ctx, run); err != nil {
		a.logger.Warn("failed to record refresh run", "error", err)
	}
}

func capArticles(articles []news.Article) []news.Article {
	if len(articles) > resultCap {
		articles = articles[:resultCap]
	}
	if articles == nil {
		return []news.Article{}
	}
	return articles
}
