package news

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	dedupePrefix = 50
	// RecentWindow is how far back an article may be published and still be served.
	RecentWindow = 48 * time.Hour
)

// Dedupe drops articles whose first 50 title characters were already seen.
// The first occurrence wins and relative order is preserved.
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := titlePrefix(a.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func titlePrefix(title string) string {
	if utf8.RuneCountInString(title) <= dedupePrefix {
		return title
	}
	return string([]rune(title)[:dedupePrefix])
}

// FilterRecent keeps articles published at or after now-window. Articles
// without a usable timestamp are dropped.
func FilterRecent(articles []Article, now time.Time, window time.Duration) []Article {
	cutoff := now.Add(-window)
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt.IsZero() || a.PublishedAt.Before(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// KeywordSet matches text against a list of keywords, case-insensitively.
// Latin keywords must match whole words ("ai" does not match "said");
// everything else matches as a substring so Korean particles do not get in
// the way ("정치" matches "정치권").
type KeywordSet struct {
	words     map[string]struct{}
	fragments []string
}

// NewKeywordSet builds a KeywordSet from the given keywords.
func NewKeywordSet(keywords ...string) KeywordSet {
	set := KeywordSet{words: make(map[string]struct{})}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if isLatinWord(k) {
			set.words[k] = struct{}{}
			continue
		}
		set.fragments = append(set.fragments, k)
	}
	return set
}

// Match reports whether any keyword occurs in text.
func (s KeywordSet) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, f := range s.fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	if len(s.words) == 0 {
		return false
	}
	for _, w := range Words(lower) {
		if _, ok := s.words[w]; ok {
			return true
		}
	}
	return false
}

// MatchArticle matches against the article title and description.
func (s KeywordSet) MatchArticle(a Article) bool {
	return s.Match(a.Title + " " + a.Description)
}

// Words splits text into lowercase runs of letters and digits.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isLatinWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// Section keyword sets used to keep only on-topic articles.
var (
	KoreaKeywords = NewKeywordSet(
		"한국", "서울", "부산", "대구", "인천", "korea", "seoul", "korean", "손흥민", "이강인",
	)
	JapanKeywords = NewKeywordSet(
		"일본", "도쿄", "오사카", "교토", "오타니", "쇼헤이", "japan", "tokyo", "japanese", "ohtani", "shohei",
		"다르비시", "darvish", "baseball", "mlb",
	)
)
