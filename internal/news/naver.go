package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"emarknews/internal/provider"
)

const defaultNaverURL = "https://openapi.naver.com/v1/search/news.json"

type naverResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
	Items        []struct {
		Title        string `json:"title"`
		OriginalLink string `json:"originallink"`
		Link         string `json:"link"`
		Description  string `json:"description"`
		PubDate      string `json:"pubDate"`
	} `json:"items"`
}

// NaverClient searches Korean-language news through the Naver search API.
type NaverClient struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	location     *time.Location
}

// NaverOption customises a NaverClient.
type NaverOption func(*NaverClient)

// WithNaverEndpoint overrides the search endpoint (tests).
func WithNaverEndpoint(u string) NaverOption {
	return func(c *NaverClient) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithNaverLocation sets the timezone used for source display strings.
func WithNaverLocation(loc *time.Location) NaverOption {
	return func(c *NaverClient) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewNaverClient builds a client with a fixed per-call timeout.
func NewNaverClient(clientID, clientSecret string, timeout time.Duration, opts ...NaverOption) *NaverClient {
	c := &NaverClient{
		endpoint:     defaultNaverURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both credentials are present.
func (c *NaverClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// Search runs one query sorted by date and returns normalized articles
// flagged as Korean.
func (c *NaverClient) Search(ctx context.Context, query string, display int) ([]Article, error) {
	if !c.Configured() {
		return nil, provider.ErrUnavailable
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("display", strconv.Itoa(display))
	values.Set("start", "1")
	values.Set("sort", "date")

	header := http.Header{}
	header.Set("X-Naver-Client-Id", c.clientID)
	header.Set("X-Naver-Client-Secret", c.clientSecret)

	var payload naverResponse
	if err := getJSON(ctx, c.httpClient, provider.Naver, c.endpoint+"?"+values.Encode(), header, &payload); err != nil {
		return nil, err
	}
	if payload.ErrorCode != "" {
		return nil, fmt.Errorf("news: naver error %s: %s", payload.ErrorCode, payload.ErrorMessage)
	}

	articles := make([]Article, 0, len(payload.Items))
	for _, item := range payload.Items {
		title := CleanMarkup(item.Title)
		description := CleanMarkup(item.Description)
		if title == "" || description == "" || item.Link == "" {
			continue
		}
		original := item.OriginalLink
		if original == "" {
			original = item.Link
		}
		publisher := PublisherFromLink(item.Link)
		published := parseTimestamp(item.PubDate)
		articles = append(articles, Article{
			ID:          ArticleID(item.Link),
			Title:       title,
			Description: description,
			URL:         item.Link,
			OriginalURL: strings.TrimSpace(original),
			PublishedAt: published,
			Source: Source{
				Name:    publisher,
				Display: SourceDisplay(publisher, published, c.location),
			},
			IsKorean: true,
		})
	}
	return articles, nil
}
