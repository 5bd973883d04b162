package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"emarknews/internal/aggregate"
	"emarknews/internal/config"
	"emarknews/internal/enrich"
	"emarknews/internal/llm"
	"emarknews/internal/logging"
	"emarknews/internal/news"
	"emarknews/internal/provider"
	"emarknews/internal/store"
	"emarknews/internal/translate"
	transporthttp "emarknews/internal/transport/http"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	limits, err := cfg.Limits()
	if err != nil {
		logger.Error("rate limits", "error", err)
		os.Exit(1)
	}
	limiter := provider.NewRateLimiter(limits)
	recorder := provider.NewRecorder()
	retrier := provider.NewRetrier(recorder, provider.WithRetryLogger(logger.With("component", "retry")))

	loc := cfg.Location()
	newsAPI := news.NewNewsAPIClient(cfg.NewsAPI.APIKey, cfg.NewsAPI.Timeout,
		news.WithNewsAPIBaseURL(cfg.NewsAPI.BaseURL),
		news.WithNewsAPILocation(loc),
	)
	naver := news.NewNaverClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret, cfg.Naver.Timeout,
		news.WithNaverEndpoint(cfg.Naver.Endpoint),
		news.WithNaverLocation(loc),
	)
	rates := news.NewExchangeClient(cfg.Exchange.Endpoint, cfg.Exchange.Timeout)

	waterfall := translate.NewWaterfall(
		translate.NewDictionary(cfg.Dictionary),
		logger.With("component", "translate"),
		translate.NewOpenAIStrategy(chatClient(cfg.OpenAI), cfg.OpenAI.Model, limiter, retrier),
		translate.NewSkyworkStrategy(chatClient(cfg.Skywork), cfg.Skywork.Model, limiter, retrier),
	)
	if cfg.OpenAI.APIKey == "" && cfg.Skywork.APIKey == "" {
		logger.Warn("no AI translation configured, using dictionary only")
	}

	pipeline := enrich.NewPipeline(waterfall, logger.With("component", "enrich"))
	collector := aggregate.NewSectionCollector(newsAPI, naver, rates, limiter, retrier, pipeline, logger.With("component", "collector"))

	opts := []aggregate.Option{
		aggregate.WithTTL(cfg.CacheTTL),
		aggregate.WithAPISources(cfg.Sources()),
		aggregate.WithLogger(logger.With("component", "aggregate")),
	}

	var runs transporthttp.RunLister
	if cfg.StorePath != "" {
		runStore, err := store.Open(cfg.StorePath)
		if err != nil {
			logger.Error("open refresh store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		defer runStore.Close()
		opts = append(opts, aggregate.WithRunRecorder(runStore))
		runs = runStore
		logger.Info("refresh audit log enabled", "path", cfg.StorePath)
	}

	aggregator := aggregate.NewAggregator(collector, limiter, recorder, opts...)
	server := transporthttp.NewServer(aggregator, runs, logger.With("component", "http"))

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("EmarkNews API listening", "addr", cfg.ListenAddr, "sources", cfg.Sources())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			stop()
		}
	}()

	go aggregator.Warm(ctx, cfg.WarmupDelay)
	go aggregator.Schedule(ctx, cfg.RefreshInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// chatClient returns nil for an unconfigured backend so the strategy
// reports itself unavailable.
func chatClient(cfg config.LLMConfig) llm.ChatClient {
	if cfg.APIKey == "" {
		return nil
	}
	return llm.NewClient(cfg.APIKey, llm.WithBaseURL(cfg.BaseURL), llm.WithTimeout(cfg.Timeout))
}
