package translate

import (
	"context"
	"errors"
	"log/slog"

	"emarknews/internal/provider"
)

// Strategy names reported in Result.Strategy.
const (
	StrategyDictionary = "dictionary"
	StrategyOriginal   = "original"
)

// Result holds the Korean-language content blocks for one article.
type Result struct {
	Summary     string
	Detailed    string
	FullContent string
	Strategy    string
}

// Strategy translates an article title and description.
type Strategy interface {
	Name() string
	Translate(ctx context.Context, title, description string) (Result, error)
}

// Translator is what the enrichment pipeline depends on.
type Translator interface {
	Translate(ctx context.Context, title, description string) Result
}

// Waterfall tries each strategy in order and falls back to the dictionary.
type Waterfall struct {
	strategies []Strategy
	fallback   *Dictionary
	logger     *slog.Logger
}

// NewWaterfall builds a waterfall. A nil fallback uses the built-in dictionary.
func NewWaterfall(fallback *Dictionary, logger *slog.Logger, strategies ...Strategy) *Waterfall {
	if fallback == nil {
		fallback = NewDictionary(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Waterfall{
		strategies: strategies,
		fallback:   fallback,
		logger:     logger,
	}
}

// Translate returns the first successful strategy's result. Every failure,
// including a rate-limit denial or a missing credential, moves on to the next
// strategy; the dictionary always answers.
func (w *Waterfall) Translate(ctx context.Context, title, description string) Result {
	for _, s := range w.strategies {
		res, err := s.Translate(ctx, title, description)
		if err == nil {
			return res
		}
		switch {
		case errors.Is(err, provider.ErrUnavailable):
			w.logger.Debug("translation strategy not configured", "strategy", s.Name())
		case errors.Is(err, provider.ErrRateLimited):
			w.logger.Warn("translation strategy rate limited", "strategy", s.Name())
		default:
			w.logger.Warn("translation strategy failed", "strategy", s.Name(), "error", err)
		}
	}
	return w.fallback.Translate(title, description)
}
