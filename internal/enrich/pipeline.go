package enrich

import (
	"context"
	"log/slog"

	"emarknews/internal/news"
	"emarknews/internal/translate"
)

const defaultKeyword = "뉴스"

// Pipeline adds translated content, marks, stars, a category and keywords
// to normalized articles.
type Pipeline struct {
	translator translate.Translator
	logger     *slog.Logger
}

// NewPipeline builds a pipeline around translator.
func NewPipeline(translator translate.Translator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{translator: translator, logger: logger}
}

// Process enriches articles one at a time, preserving order. An article
// whose enrichment panics is kept with default enrichment.
func (p *Pipeline) Process(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, p.enrichOne(ctx, a))
	}
	return out
}

func (p *Pipeline) enrichOne(ctx context.Context, a news.Article) (enriched news.Article) {
	defer func() {
		if recovered := recover(); recovered != nil {
			p.logger.Error("article enrichment panicked", "article_id", a.ID, "panic", recovered)
			enriched = withDefaults(a)
		}
	}()

	var content translate.Result
	if a.IsKorean || p.translator == nil {
		content = translate.Passthrough(a.Description)
	} else {
		content = p.translator.Translate(ctx, a.Title, a.Description)
	}

	text := a.Title + " " + a.Description
	marks := DetectMarks(text)

	enriched = a
	enriched.Summary = content.Summary
	enriched.Detail = content.Detailed
	enriched.FullContent = content.FullContent
	enriched.Marks = marks
	enriched.Stars = Stars(a, marks)
	enriched.Category = Classify(text)
	enriched.Keywords = ExtractKeywords(text)
	return enriched
}

func withDefaults(a news.Article) news.Article {
	content := translate.Passthrough(a.Description)
	a.Summary = content.Summary
	a.Detail = content.Detailed
	a.FullContent = content.FullContent
	a.Marks = []string{}
	a.Stars = int(baseStars)
	a.Category = CategoryGeneral
	a.Keywords = []string{defaultKeyword}
	return a
}
