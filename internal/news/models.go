package news

import "time"

// Source describes where an article came from.
type Source struct {
	Name    string `json:"name"`
	Display string `json:"display"`
}

// Article is a normalized news record. The enrichment block is filled in
// exactly once by the enrichment pipeline; everything else is set at
// normalization time and not touched afterwards.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	OriginalURL string    `json:"originalUrl"`
	Image       string    `json:"image,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      Source    `json:"source"`
	IsKorean    bool      `json:"isKorean"`

	Summary     string   `json:"summary,omitempty"`
	Detail      string   `json:"detailed,omitempty"`
	FullContent string   `json:"fullContent,omitempty"`
	Marks       []string `json:"marks"`
	Stars       int      `json:"stars,omitempty"`
	Category    string   `json:"category,omitempty"`
	Keywords    []string `json:"keywords"`
}

// ExchangeRates holds the KRW cross rates shown next to the news.
type ExchangeRates struct {
	USDKRW     float64   `json:"USD_KRW"`
	JPYKRW     float64   `json:"JPY_KRW"`
	LastUpdate time.Time `json:"lastUpdate"`
	Source     string    `json:"source"`
}

const (
	DefaultUSDKRW      = 1340
	DefaultJPYKRW      = 9.2
	defaultRatesSource = "Default"
)

// DefaultRates is used whenever live rates cannot be fetched.
func DefaultRates(now time.Time) ExchangeRates {
	return ExchangeRates{
		USDKRW:     DefaultUSDKRW,
		JPYKRW:     DefaultJPYKRW,
		LastUpdate: now,
		Source:     defaultRatesSource,
	}
}
