package news

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"emarknews/internal/provider"
)

const (
	defaultExchangeURL = "https://api.exchangerate-api.com/v4/latest/USD"
	liveRatesSource    = "ExchangeRate-API"
	fallbackJPYPerUSD  = 145
	fallbackKRWPerUSD  = DefaultUSDKRW
)

// ExchangeClient reads USD-based rates and derives the KRW cross rates.
type ExchangeClient struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// NewExchangeClient builds a client with a fixed per-call timeout.
func NewExchangeClient(endpoint string, timeout time.Duration) *ExchangeClient {
	if endpoint == "" {
		endpoint = defaultExchangeURL
	}
	return &ExchangeClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Fetch returns live rates: USD→KRW rounded to a whole won and JPY→KRW
// rounded to one decimal place.
func (c *ExchangeClient) Fetch(ctx context.Context) (ExchangeRates, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := getJSON(ctx, c.httpClient, provider.ExchangeRate, c.endpoint, nil, &payload); err != nil {
		return ExchangeRates{}, err
	}

	krw := rateOr(payload.Rates, "KRW", fallbackKRWPerUSD)
	jpy := rateOr(payload.Rates, "JPY", fallbackJPYPerUSD)

	return ExchangeRates{
		USDKRW:     krw.Round(0).InexactFloat64(),
		JPYKRW:     krw.Div(jpy).Round(1).InexactFloat64(),
		LastUpdate: c.now(),
		Source:     liveRatesSource,
	}, nil
}

func rateOr(rates map[string]float64, code string, fallback float64) decimal.Decimal {
	if v, ok := rates[code]; ok && v > 0 {
		return decimal.NewFromFloat(v)
	}
	return decimal.NewFromFloat(fallback)
}
