package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"emarknews/internal/provider"
)

const (
	configPathEnv   = "EMARK_CONFIG"
	defaultTimezone = "Asia/Seoul"
)

// Config captures runtime configuration for the news service.
type Config struct {
	ListenAddr      string        `yaml:"listenAddr"`
	LogLevel        string        `yaml:"logLevel"`
	Timezone        string        `yaml:"timezone"`
	CacheTTL        time.Duration `yaml:"cacheTTL"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	WarmupDelay     time.Duration `yaml:"warmupDelay"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	StorePath       string        `yaml:"storePath"`

	NewsAPI  NewsAPIConfig  `yaml:"newsApi"`
	Naver    NaverConfig    `yaml:"naver"`
	OpenAI   LLMConfig      `yaml:"openAi"`
	Skywork  LLMConfig      `yaml:"skywork"`
	Exchange ExchangeConfig `yaml:"exchange"`

	// RateLimits overrides provider windows, keyed by wire name ("naverApi").
	RateLimits map[string]provider.Limit `yaml:"rateLimits"`
	// Dictionary adds or replaces fallback translation entries.
	Dictionary map[string]string `yaml:"dictionary"`

	location *time.Location
}

// NewsAPIConfig configures the international headline provider.
type NewsAPIConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// NaverConfig configures the Korean search provider.
type NaverConfig struct {
	ClientID     string        `yaml:"clientId"`
	ClientSecret string        `yaml:"clientSecret"`
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LLMConfig configures one chat-completions translation backend.
type LLMConfig struct {
	APIKey  string        `yaml:"apiKey"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// ExchangeConfig configures the exchange-rate provider.
type ExchangeConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// FromEnv loads .env, the optional YAML file named by EMARK_CONFIG and then
// environment overrides, in that order.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.bindTimezone(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return Config{
		ListenAddr:   ":8080",
		LogLevel:     "info",
		Timezone:     defaultTimezone,
		CacheTTL:     10 * time.Minute,
		WarmupDelay:  2 * time.Second,
		WriteTimeout: 5 * time.Minute,

		NewsAPI: NewsAPIConfig{BaseURL: "https://newsapi.org/v2", Timeout: 15 * time.Second},
		Naver: NaverConfig{
			Endpoint: "https://openapi.naver.com/v1/search/news.json",
			Timeout:  12 * time.Second,
		},
		OpenAI:   LLMConfig{Model: "gpt-4o-mini", BaseURL: "https://api.openai.com/v1", Timeout: 20 * time.Second},
		Skywork:  LLMConfig{Model: "skywork-lite", BaseURL: "https://api.skywork.ai/v1", Timeout: 15 * time.Second},
		Exchange: ExchangeConfig{Endpoint: "https://api.exchangerate-api.com/v4/latest/USD", Timeout: 10 * time.Second},
		location: loc,
	}
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getEnv("EMARK_LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getEnv("EMARK_LOG_LEVEL", c.LogLevel)
	c.Timezone = getEnv("EMARK_TIMEZONE", c.Timezone)
	c.StorePath = getEnv("EMARK_STORE_PATH", c.StorePath)

	c.NewsAPI.APIKey = getEnv("NEWS_API_KEY", c.NewsAPI.APIKey)
	c.Naver.ClientID = getEnv("NAVER_CLIENT_ID", c.Naver.ClientID)
	c.Naver.ClientSecret = getEnv("NAVER_CLIENT_SECRET", c.Naver.ClientSecret)
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)
	c.Skywork.APIKey = getEnv("SKYWORK_API_KEY", c.Skywork.APIKey)
	c.Skywork.Model = getEnv("SKYWORK_MODEL", c.Skywork.Model)

	if err := durationEnv("EMARK_CACHE_TTL", &c.CacheTTL); err != nil {
		return err
	}
	if err := durationEnv("EMARK_REFRESH_INTERVAL", &c.RefreshInterval); err != nil {
		return err
	}
	if err := durationEnv("EMARK_WARMUP_DELAY", &c.WarmupDelay); err != nil {
		return err
	}
	if err := durationEnv("EMARK_WRITE_TIMEOUT", &c.WriteTimeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) bindTimezone() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the timezone used to render article timestamps.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return time.UTC
}

// Limits returns the default provider limits with any overrides applied.
func (c Config) Limits() (map[provider.ID]provider.Limit, error) {
	limits := provider.DefaultLimits()
	for name, limit := range c.RateLimits {
		id, ok := provider.Parse(name)
		if !ok {
			return nil, fmt.Errorf("rate limit for unknown provider %q", name)
		}
		limits[id] = limit
	}
	return limits, nil
}

// Sources reports which providers have credentials, keyed by wire name.
func (c Config) Sources() map[string]bool {
	return map[string]bool{
		provider.NewsAPI.String():      c.NewsAPI.APIKey != "",
		provider.Naver.String():        c.Naver.ClientID != "" && c.Naver.ClientSecret != "",
		provider.OpenAI.String():       c.OpenAI.APIKey != "",
		provider.Skywork.String():      c.Skywork.APIKey != "",
		provider.ExchangeRate.String(): true,
	}
}

func durationEnv(key string, dst *time.Duration) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
		return nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = time.Duration(seconds) * time.Second
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
