package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"emarknews/internal/news"
	"emarknews/internal/provider"
)

type fakeHeadlines struct {
	mu         sync.Mutex
	configured bool
	requests   []news.NewsAPIRequest
	respond    func(req news.NewsAPIRequest) ([]news.Article, error)
}

func (f *fakeHeadlines) Configured() bool { return f.configured }

func (f *fakeHeadlines) Fetch(ctx context.Context, req news.NewsAPIRequest) ([]news.Article, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

type fakeSearch struct {
	configured bool
	queries    []string
}

func (f *fakeSearch) Configured() bool { return f.configured }

func (f *fakeSearch) Search(ctx context.Context, query string, display int) ([]news.Article, error) {
	f.queries = append(f.queries, query)
	return []news.Article{{ID: "n-" + query, Title: query + " 기사 제목", Description: "본문", IsKorean: true, PublishedAt: collectorNow.Add(-time.Hour)}}, nil
}

type countingEnricher struct {
	calls int
}

func (e *countingEnricher) Process(ctx context.Context, articles []news.Article) []news.Article {
	e.calls++
	out := make([]news.Article, len(articles))
	for i, a := range articles {
		a.Category = "enriched"
		out[i] = a
	}
	return out
}

var collectorNow = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

func newTestCollector(h HeadlineSource, s SearchSource, limiter *provider.RateLimiter) (*SectionCollector, *provider.Recorder, *countingEnricher) {
	rec := provider.NewRecorder()
	enricher := &countingEnricher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewSectionCollector(h, s, nil, limiter,
		provider.NewRetrier(rec, provider.WithMaxAttempts(1), provider.WithRetryLogger(logger)),
		enricher, logger)
	c.Now = func() time.Time { return collectorNow }
	c.NewsPause = 0
	c.NaverPause = 0
	return c, rec, enricher
}

func headline(id, title string, age time.Duration) news.Article {
	return news.Article{ID: id, Title: title, Description: "description of " + title, PublishedAt: collectorNow.Add(-age)}
}

func TestWorldMergesDedupesAndFilters(t *testing.T) {
	h := &fakeHeadlines{configured: true, respond: func(req news.NewsAPIRequest) ([]news.Article, error) {
		switch req.Category {
		case "general":
			return []news.Article{headline("a", "Storm hits coast", time.Hour), headline("old", "Old story", 72*time.Hour)}, nil
		case "business":
			return nil, errors.New("upstream 500")
		}
		return []news.Article{headline("dup", "Storm hits coast", 2*time.Hour), headline("b", "Chip demand grows", time.Hour)}, nil
	}}
	c, rec, enricher := newTestCollector(h, nil, nil)

	got, err := c.World(context.Background())
	if err != nil {
		t.Fatalf("World: %v", err)
	}
	if len(h.requests) != 4 {
		t.Fatalf("expected 4 NewsAPI calls, got %d", len(h.requests))
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected deduplicated recent articles, got %+v", got)
	}
	if enricher.calls != 1 || got[0].Category != "enriched" {
		t.Fatalf("expected enrichment to run once")
	}
	if m := rec.Metric(provider.NewsAPI); m.SuccessCount != 3 || m.FailureCount != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestSectionCapsArticles(t *testing.T) {
	h := &fakeHeadlines{configured: true, respond: func(req news.NewsAPIRequest) ([]news.Article, error) {
		out := make([]news.Article, 0, 10)
		for i := 0; i < 10; i++ {
			out = append(out, headline(fmt.Sprintf("%s-%d", req.Category, i), fmt.Sprintf("%s%s story %d", req.Category, req.Query, i), time.Hour))
		}
		return out, nil
	}}
	c, _, _ := newTestCollector(h, nil, nil)

	got, err := c.World(context.Background())
	if err != nil {
		t.Fatalf("World: %v", err)
	}
	if len(got) != sectionCap {
		t.Fatalf("expected %d articles, got %d", sectionCap, len(got))
	}
}

func TestSectionFailsOnlyWhenNothingSucceeded(t *testing.T) {
	h := &fakeHeadlines{configured: true, respond: func(req news.NewsAPIRequest) ([]news.Article, error) {
		return nil, errors.New("down")
	}}
	c, _, _ := newTestCollector(h, nil, nil)

	got, err := c.World(context.Background())
	if err == nil {
		t.Fatalf("expected section error")
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestUnconfiguredSourcesAreSkipped(t *testing.T) {
	h := &fakeHeadlines{configured: false, respond: func(req news.NewsAPIRequest) ([]news.Article, error) {
		t.Fatalf("unconfigured source must not be called")
		return nil, nil
	}}
	s := &fakeSearch{configured: true}
	c, rec, _ := newTestCollector(h, s, nil)

	got, err := c.Korea(context.Background())
	if err != nil {
		t.Fatalf("Korea: %v", err)
	}
	if len(s.queries) != len(naverQueries) || len(got) != len(naverQueries) {
		t.Fatalf("expected one article per Naver query, got %d", len(got))
	}
	if m := rec.Metric(provider.NewsAPI); m.SuccessCount+m.FailureCount != 0 {
		t.Fatalf("skipped calls must not be recorded, got %+v", m)
	}
}

func TestSectionWithoutCredentialsIsEmptyNotFailed(t *testing.T) {
	c, rec, enricher := newTestCollector(&fakeHeadlines{configured: false}, &fakeSearch{configured: false}, nil)

	for name, collect := range map[string]func(context.Context) ([]news.Article, error){
		"world": c.World,
		"korea": c.Korea,
		"japan": c.Japan,
	} {
		got, err := collect(context.Background())
		if err != nil {
			t.Fatalf("%s: expected no error without credentials, got %v", name, err)
		}
		if len(got) != 0 {
			t.Fatalf("%s: expected empty section, got %+v", name, got)
		}
	}
	if enricher.calls != 3 {
		t.Fatalf("expected enrichment over each empty section, got %d", enricher.calls)
	}
	if m := rec.Metric(provider.NewsAPI); m.SuccessCount+m.FailureCount != 0 {
		t.Fatalf("skipped calls must not be recorded, got %+v", m)
	}
}

func TestRateLimitedCallsAreSkipped(t *testing.T) {
	limiter := provider.NewRateLimiter(map[provider.ID]provider.Limit{
		provider.Naver: {MaxRequests: 2, Window: time.Minute},
	}, provider.WithLimiterClock(func() time.Time { return collectorNow }))
	s := &fakeSearch{configured: true}
	c, _, _ := newTestCollector(nil, s, limiter)

	got, err := c.Korea(context.Background())
	if err != nil {
		t.Fatalf("Korea: %v", err)
	}
	if len(s.queries) != 2 || len(got) != 2 {
		t.Fatalf("expected only two admitted Naver calls, got queries=%v", s.queries)
	}
}

func TestJapanFiltersByKeywords(t *testing.T) {
	h := &fakeHeadlines{configured: true, respond: func(req news.NewsAPIRequest) ([]news.Article, error) {
		return []news.Article{
			headline("jp-"+req.Endpoint+req.Country+req.From, "Tokyo opens new station "+req.Country+req.From, time.Hour),
			headline("other-"+req.Endpoint+req.Country+req.From, "Paris weather update "+req.Country+req.From, time.Hour),
		}, nil
	}}
	c, _, _ := newTestCollector(h, nil, nil)

	got, err := c.Japan(context.Background())
	if err != nil {
		t.Fatalf("Japan: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected one matching article per call, got %+v", got)
	}
	for _, a := range got {
		if a.ID[:3] != "jp-" {
			t.Fatalf("unexpected article %q", a.ID)
		}
	}
	if h.requests[0].From != "2025-09-24" || h.requests[2].From != "2025-09-28" {
		t.Fatalf("unexpected from dates %q %q", h.requests[0].From, h.requests[2].From)
	}
}

func TestExchangeRatesFallsBackToDefaults(t *testing.T) {
	c, _, _ := newTestCollector(nil, nil, nil)

	rates, err := c.ExchangeRates(context.Background())
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if rates.Source != "Default" || rates.USDKRW != news.DefaultUSDKRW {
		t.Fatalf("expected default rates, got %+v", rates)
	}
}
