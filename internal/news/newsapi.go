package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"emarknews/internal/provider"
)

const (
	defaultNewsAPIURL  = "https://newsapi.org/v2"
	newsAPIMaxPageSize = 100
	newsAPIMaxQuery    = 500
	removedMarker      = "[Removed]"
)

// NewsAPIRequest describes one NewsAPI call.
type NewsAPIRequest struct {
	Endpoint string // "top-headlines" or "everything"
	Query    string
	Category string
	Country  string
	Language string
	SortBy   string
	PageSize int
	From     string
	To       string
}

// Values returns validated query parameters: the page size is capped, the
// query truncated, and unparseable date bounds dropped.
func (r NewsAPIRequest) Values() url.Values {
	v := url.Values{}
	if q := r.Query; q != "" {
		if utf8.RuneCountInString(q) > newsAPIMaxQuery {
			q = string([]rune(q)[:newsAPIMaxQuery])
		}
		v.Set("q", q)
	}
	setIf(v, "category", r.Category)
	setIf(v, "country", r.Country)
	setIf(v, "language", r.Language)
	setIf(v, "sortBy", r.SortBy)
	if r.PageSize > 0 {
		size := r.PageSize
		if size > newsAPIMaxPageSize {
			size = newsAPIMaxPageSize
		}
		v.Set("pageSize", strconv.Itoa(size))
	}
	if validDate(r.From) {
		v.Set("from", r.From)
	}
	if validDate(r.To) {
		v.Set("to", r.To)
	}
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func validDate(s string) bool {
	if s == "" {
		return false
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPIClient fetches English-language articles from newsapi.org.
type NewsAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	location   *time.Location
}

// NewsAPIOption customises a NewsAPIClient.
type NewsAPIOption func(*NewsAPIClient)

// WithNewsAPIBaseURL overrides the API root (tests).
func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(c *NewsAPIClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithNewsAPIHTTPClient overrides the HTTP client.
func WithNewsAPIHTTPClient(hc *http.Client) NewsAPIOption {
	return func(c *NewsAPIClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithNewsAPILocation sets the timezone used for source display strings.
func WithNewsAPILocation(loc *time.Location) NewsAPIOption {
	return func(c *NewsAPIClient) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewNewsAPIClient builds a client with a fixed per-call timeout.
func NewNewsAPIClient(apiKey string, timeout time.Duration, opts ...NewsAPIOption) *NewsAPIClient {
	c := &NewsAPIClient{
		baseURL:    defaultNewsAPIURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		location:   time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *NewsAPIClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Fetch performs a single NewsAPI call and returns normalized articles.
// Records missing a title, description or URL, and removed stubs, are dropped.
func (c *NewsAPIClient) Fetch(ctx context.Context, req NewsAPIRequest) ([]Article, error) {
	if !c.Configured() {
		return nil, provider.ErrUnavailable
	}

	values := req.Values()
	values.Set("apiKey", c.apiKey)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, req.Endpoint, values.Encode())

	var payload newsAPIResponse
	if err := getJSON(ctx, c.httpClient, provider.NewsAPI, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news: newsapi error %s: %s", payload.Code, payload.Message)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if !usable(raw.Title) || !usable(raw.Description) || raw.URL == "" || strings.Contains(raw.URL, "removed.com") {
			continue
		}
		published := parseTimestamp(raw.PublishedAt)
		articles = append(articles, Article{
			ID:          ArticleID(raw.URL),
			Title:       strings.TrimSpace(raw.Title),
			Description: strings.TrimSpace(raw.Description),
			URL:         raw.URL,
			OriginalURL: raw.URL,
			Image:       raw.URLToImage,
			PublishedAt: published,
			Source: Source{
				Name:    raw.Source.Name,
				Display: SourceDisplay(raw.Source.Name, published, c.location),
			},
		})
	}
	return articles, nil
}

func usable(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != removedMarker
}

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no known layout matches.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
