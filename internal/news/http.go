package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"emarknews/internal/provider"
)

const userAgent = "EmarkNews/11.0.0"

// ParseError reports a provider payload that could not be decoded.
type ParseError struct {
	Provider provider.ID
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("news: parse %s response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider provider.ID
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("news: %s api error %d: %s", e.Provider, e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func getJSON(ctx context.Context, hc *http.Client, id provider.ID, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("news: create %s request: %w", id, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("news: %s request failed: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Provider: id, Code: resp.StatusCode, Body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Provider: id, Err: err}
	}
	return nil
}
