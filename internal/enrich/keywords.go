package enrich

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"emarknews/internal/news"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"this": {}, "that": {}, "from": {}, "as": {}, "it": {}, "its": {},
	"has": {}, "have": {}, "had": {}, "will": {}, "after": {}, "said": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// tokens returns lowercase words of at least minRunes characters, minus stop
// words. Latin words shorter than three letters are always dropped.
func tokens(text string, minRunes int) []string {
	words := news.Words(text)
	out := words[:0]
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		if n < minRunes || isStopWord(w) {
			continue
		}
		if n < 3 && w[0] < utf8.RuneSelf {
			continue
		}
		out = append(out, w)
	}
	return out
}

type termCount struct {
	term  string
	count int
}

// rank counts terms and orders them by frequency, ties by first appearance.
func rank(terms []string) []termCount {
	index := make(map[string]int, len(terms))
	var counts []termCount
	for _, t := range terms {
		if i, ok := index[t]; ok {
			counts[i].count++
			continue
		}
		index[t] = len(counts)
		counts = append(counts, termCount{term: t, count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	return counts
}

const (
	maxKeywords      = 5
	minKeywordRunes  = 3
	maxTrending      = 15
	minTrendingRunes = 2
	trendingCountCap = 50
)

// ExtractKeywords returns up to five of the most frequent words in text.
func ExtractKeywords(text string) []string {
	ranked := rank(tokens(text, minKeywordRunes))
	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}
	out := make([]string, len(ranked))
	for i, tc := range ranked {
		out[i] = tc.term
	}
	return out
}

// TrendingKeyword is a term and how often it appeared, capped at 50.
// It encodes as a two-element JSON array.
type TrendingKeyword struct {
	Keyword string
	Count   int
}

func (k TrendingKeyword) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{k.Keyword, k.Count})
}

func (k *TrendingKeyword) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("enrich: trending keyword must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Keyword); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &k.Count)
}

// Trending ranks terms across every article's title and description.
func Trending(articles []news.Article) []TrendingKeyword {
	var terms []string
	for _, a := range articles {
		terms = append(terms, tokens(a.Title+" "+a.Description, minTrendingRunes)...)
	}
	ranked := rank(terms)
	if len(ranked) > maxTrending {
		ranked = ranked[:maxTrending]
	}
	out := make([]TrendingKeyword, len(ranked))
	for i, tc := range ranked {
		out[i] = TrendingKeyword{Keyword: tc.term, Count: min(tc.count, trendingCountCap)}
	}
	return out
}
