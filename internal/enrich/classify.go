package enrich

import (
	"math"
	"unicode/utf8"

	"emarknews/internal/news"
)

// Marks attached to notable articles.
const (
	MarkUrgent    = "긴급"
	MarkImportant = "중요"
	MarkBuzz      = "Buzz"
)

var (
	urgentKeywords = news.NewKeywordSet(
		"긴급", "속보", "발생", "사고", "재해", "위기", "breaking", "urgent", "alert", "emergency", "crisis",
	)
	importantKeywords = news.NewKeywordSet(
		"중요", "발표", "결정", "승인", "합의", "important", "significant", "major", "key", "crucial",
	)
	buzzKeywords = news.NewKeywordSet(
		"화제", "인기", "트렌드", "바이럴", "논란", "viral", "trending", "popular", "buzz", "sensation",
	)
)

// DetectMarks returns the urgency, importance and buzz tags found in text,
// always in that order.
func DetectMarks(text string) []string {
	marks := []string{}
	if urgentKeywords.Match(text) {
		marks = append(marks, MarkUrgent)
	}
	if importantKeywords.Match(text) {
		marks = append(marks, MarkImportant)
	}
	if buzzKeywords.Match(text) {
		marks = append(marks, MarkBuzz)
	}
	return marks
}

// Categories in classification priority order.
const (
	CategoryPolitics   = "정치"
	CategoryEconomy    = "경제"
	CategorySports     = "스포츠"
	CategoryTechnology = "기술"
	CategoryScience    = "과학"
	CategoryCulture    = "문화"
	CategoryHealth     = "건강"
	CategoryGeneral    = "일반"
)

var categoryRules = []struct {
	category string
	keywords news.KeywordSet
}{
	{CategoryPolitics, news.NewKeywordSet("정치", "politics", "government")},
	{CategoryEconomy, news.NewKeywordSet("경제", "economy", "business", "finance")},
	{CategorySports, news.NewKeywordSet("스포츠", "sports", "game", "match")},
	{CategoryTechnology, news.NewKeywordSet("기술", "technology", "tech", "ai", "digital")},
	{CategoryScience, news.NewKeywordSet("과학", "science", "research", "study")},
	{CategoryCulture, news.NewKeywordSet("문화", "culture", "art", "entertainment")},
	{CategoryHealth, news.NewKeywordSet("건강", "health", "medical", "hospital")},
}

// Classify returns the first category whose keywords occur in text.
func Classify(text string) string {
	for _, rule := range categoryRules {
		if rule.keywords.Match(text) {
			return rule.category
		}
	}
	return CategoryGeneral
}

const (
	baseStars        = 3.0
	minStars         = 1
	maxStars         = 5
	richDescriptionN = 100
)

// Stars scores an article from 1 to 5.
func Stars(a news.Article, marks []string) int {
	score := baseStars
	for _, m := range marks {
		switch m {
		case MarkUrgent, MarkImportant:
			score++
		case MarkBuzz:
			score += 0.5
		}
	}
	if a.Image != "" {
		score += 0.5
	}
	if utf8.RuneCountInString(a.Description) > richDescriptionN {
		score += 0.5
	}
	if a.OriginalURL != "" && a.OriginalURL != a.URL {
		score += 0.5
	}
	return clamp(int(math.Round(score)), minStars, maxStars)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
