package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"emarknews/internal/news"
	"emarknews/internal/provider"
)

const (
	sectionCap        = 20
	naverDisplay      = 10
	defaultNewsPause  = 200 * time.Millisecond
	defaultNaverPause = 150 * time.Millisecond
)

var naverQueries = []string{"뉴스", "정치", "경제", "사회"}

// HeadlineSource is the NewsAPI-style provider.
type HeadlineSource interface {
	Configured() bool
	Fetch(ctx context.Context, req news.NewsAPIRequest) ([]news.Article, error)
}

// SearchSource is the Naver-style Korean provider.
type SearchSource interface {
	Configured() bool
	Search(ctx context.Context, query string, display int) ([]news.Article, error)
}

// RatesSource provides exchange rates.
type RatesSource interface {
	Fetch(ctx context.Context) (news.ExchangeRates, error)
}

// Enricher finishes normalized articles.
type Enricher interface {
	Process(ctx context.Context, articles []news.Article) []news.Article
}

// Collector gathers one payload branch each.
type Collector interface {
	World(ctx context.Context) ([]news.Article, error)
	Korea(ctx context.Context) ([]news.Article, error)
	Japan(ctx context.Context) ([]news.Article, error)
	ExchangeRates(ctx context.Context) (news.ExchangeRates, error)
}

// SectionCollector fetches each section from its providers. Calls to the
// same provider within a section run sequentially with a fixed pause; each
// call is rate-limit checked and retried on its own.
type SectionCollector struct {
	Headlines  HeadlineSource
	Search     SearchSource
	Rates      RatesSource
	Limiter    *provider.RateLimiter
	Retrier    *provider.Retrier
	Enricher   Enricher
	Logger     *slog.Logger
	Now        func() time.Time
	NewsPause  time.Duration
	NaverPause time.Duration
}

var _ Collector = (*SectionCollector)(nil)

// NewSectionCollector wires a collector with the default pauses.
func NewSectionCollector(headlines HeadlineSource, search SearchSource, rates RatesSource, limiter *provider.RateLimiter, retrier *provider.Retrier, enricher Enricher, logger *slog.Logger) *SectionCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionCollector{
		Headlines:  headlines,
		Search:     search,
		Rates:      rates,
		Limiter:    limiter,
		Retrier:    retrier,
		Enricher:   enricher,
		Logger:     logger,
		Now:        time.Now,
		NewsPause:  defaultNewsPause,
		NaverPause: defaultNaverPause,
	}
}

type call struct {
	provider provider.ID
	label    string
	ready    bool
	pause    time.Duration
	fetch    func(ctx context.Context) ([]news.Article, error)
}

func (c *SectionCollector) headline(label string, req news.NewsAPIRequest, keep *news.KeywordSet) call {
	return call{
		provider: provider.NewsAPI,
		label:    label,
		ready:    c.Headlines != nil && c.Headlines.Configured(),
		pause:    c.NewsPause,
		fetch: func(ctx context.Context) ([]news.Article, error) {
			articles, err := c.Headlines.Fetch(ctx, req)
			if err != nil || keep == nil {
				return articles, err
			}
			filtered := articles[:0]
			for _, a := range articles {
				if keep.MatchArticle(a) {
					filtered = append(filtered, a)
				}
			}
			return filtered, nil
		},
	}
}

// World collects general international headlines.
func (c *SectionCollector) World(ctx context.Context) ([]news.Article, error) {
	calls := []call{
		c.headline("top-headlines/general", news.NewsAPIRequest{Endpoint: "top-headlines", Category: "general", Language: "en", PageSize: 25}, nil),
		c.headline("everything/world", news.NewsAPIRequest{Endpoint: "everything", Query: "world OR global OR international", Language: "en", PageSize: 20, SortBy: "publishedAt"}, nil),
		c.headline("top-headlines/business", news.NewsAPIRequest{Endpoint: "top-headlines", Category: "business", Language: "en", PageSize: 15}, nil),
		c.headline("top-headlines/technology", news.NewsAPIRequest{Endpoint: "top-headlines", Category: "technology", Language: "en", PageSize: 15}, nil),
	}
	return c.section(ctx, "world", calls)
}

// Korea collects Korean-language search results plus English coverage of Korea.
func (c *SectionCollector) Korea(ctx context.Context) ([]news.Article, error) {
	calls := make([]call, 0, len(naverQueries)+1)
	for _, q := range naverQueries {
		query := q
		calls = append(calls, call{
			provider: provider.Naver,
			label:    "naver/" + query,
			ready:    c.Search != nil && c.Search.Configured(),
			pause:    c.NaverPause,
			fetch: func(ctx context.Context) ([]news.Article, error) {
				return c.Search.Search(ctx, query, naverDisplay)
			},
		})
	}
	calls = append(calls, c.headline("everything/korea",
		news.NewsAPIRequest{Endpoint: "everything", Query: "Korea OR Korean OR Seoul", Language: "en", PageSize: 15, SortBy: "publishedAt"},
		&news.KoreaKeywords))
	return c.section(ctx, "korea", calls)
}

// Japan collects Japan and Japanese-baseball coverage.
func (c *SectionCollector) Japan(ctx context.Context) ([]news.Article, error) {
	now := c.now()
	calls := []call{
		c.headline("everything/japan", news.NewsAPIRequest{
			Endpoint: "everything", Query: "Japan OR Japanese OR Tokyo OR Ohtani OR Shohei",
			Language: "en", PageSize: 20, SortBy: "publishedAt", From: day(now.AddDate(0, 0, -7)),
		}, &news.JapanKeywords),
		c.headline("top-headlines/jp", news.NewsAPIRequest{Endpoint: "top-headlines", Country: "jp", PageSize: 15}, &news.JapanKeywords),
		c.headline("everything/ohtani", news.NewsAPIRequest{
			Endpoint: "everything", Query: "MLB AND (Ohtani OR Shohei)",
			Language: "en", PageSize: 10, SortBy: "publishedAt", From: day(now.AddDate(0, 0, -3)),
		}, &news.JapanKeywords),
	}
	return c.section(ctx, "japan", calls)
}

// ExchangeRates returns live rates, or the defaults together with the error.
func (c *SectionCollector) ExchangeRates(ctx context.Context) (news.ExchangeRates, error) {
	if c.Rates == nil {
		return news.DefaultRates(c.now()), provider.ErrUnavailable
	}
	if c.Limiter != nil && !c.Limiter.Allow(provider.ExchangeRate) {
		return news.DefaultRates(c.now()), provider.ErrRateLimited
	}
	rates, err := provider.Do(ctx, c.Retrier, provider.ExchangeRate, c.Rates.Fetch)
	if err != nil {
		c.Logger.Warn("exchange rates unavailable, using defaults", "error", err)
		return news.DefaultRates(c.now()), err
	}
	return rates, nil
}

// section runs calls in order and post-processes the union. Unconfigured and
// rate-limited calls are skipped. It fails only when no call succeeded and at
// least one attempted call errored.
func (c *SectionCollector) section(ctx context.Context, name string, calls []call) ([]news.Article, error) {
	var (
		collected []news.Article
		errs      []error
		succeeded int
	)

	for i, cl := range calls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !cl.ready {
			c.Logger.Debug("provider not configured, skipping call", "section", name, "call", cl.label, "provider", cl.provider.String())
			continue
		}
		if c.Limiter != nil && !c.Limiter.Allow(cl.provider) {
			c.Logger.Warn("rate limit reached, skipping call", "section", name, "call", cl.label, "provider", cl.provider.String())
			continue
		}

		articles, err := provider.Do(ctx, c.Retrier, cl.provider, cl.fetch)
		if err != nil {
			c.Logger.Error("section call failed", "section", name, "call", cl.label, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", cl.label, err))
		} else {
			succeeded++
			collected = append(collected, articles...)
		}

		if i < len(calls)-1 {
			if err := pause(ctx, cl.pause); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}

	if succeeded == 0 && len(errs) > 0 {
		return []news.Article{}, fmt.Errorf("aggregate: %s section: %w", name, errors.Join(errs...))
	}

	articles := news.FilterRecent(news.Dedupe(collected), c.now(), news.RecentWindow)
	if c.Enricher != nil {
		articles = c.Enricher.Process(ctx, articles)
	}
	if len(articles) > sectionCap {
		articles = articles[:sectionCap]
	}
	c.Logger.Info("section collected", "section", name, "articles", len(articles), "calls_ok", succeeded, "calls_failed", len(errs))
	return articles, nil
}

func (c *SectionCollector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
