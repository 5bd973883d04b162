package provider

import (
	"errors"
	"fmt"
)

// ID identifies an upstream service the aggregator talks to.
type ID int

const (
	NewsAPI ID = iota
	Naver
	OpenAI
	Skywork
	ExchangeRate

	count
)

var names = [count]string{
	NewsAPI:      "newsApi",
	Naver:        "naverApi",
	OpenAI:       "openAi",
	Skywork:      "skyworkAi",
	ExchangeRate: "exchangeApi",
}

// All returns every known provider in declaration order.
func All() []ID {
	ids := make([]ID, 0, count)
	for id := ID(0); id < count; id++ {
		ids = append(ids, id)
	}
	return ids
}

// String returns the wire name used in status and metrics payloads.
func (id ID) String() string {
	if !id.valid() {
		return fmt.Sprintf("provider(%d)", int(id))
	}
	return names[id]
}

// Parse resolves a wire name back to its ID.
func Parse(name string) (ID, bool) {
	for id := ID(0); id < count; id++ {
		if names[id] == name {
			return id, true
		}
	}
	return 0, false
}

func (id ID) valid() bool {
	return id >= 0 && id < count
}

var (
	// ErrRateLimited is returned when the local rate limiter refuses a call.
	ErrRateLimited = errors.New("provider: rate limit reached")
	// ErrUnavailable marks a provider whose credentials are not configured.
	ErrUnavailable = errors.New("provider: not configured")
)

// CallError is returned once every retry attempt against a provider has failed.
type CallError struct {
	Provider ID
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("provider %s: failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
