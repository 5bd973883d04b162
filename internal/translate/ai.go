package translate

import (
	"context"
	"fmt"

	"emarknews/internal/llm"
	"emarknews/internal/provider"
)

// AIStrategy translates through an OpenAI-compatible chat model.
type AIStrategy struct {
	Provider    provider.ID
	Client      llm.ChatClient
	Model       string
	MaxTokens   int
	Temperature float64
	Prompt      func(content string) string
	Limiter     *provider.RateLimiter
	Retrier     *provider.Retrier
}

var _ Strategy = AIStrategy{}

// NewOpenAIStrategy returns the primary strategy. A nil client disables it.
func NewOpenAIStrategy(client llm.ChatClient, model string, limiter *provider.RateLimiter, retrier *provider.Retrier) AIStrategy {
	return AIStrategy{
		Provider:    provider.OpenAI,
		Client:      client,
		Model:       model,
		MaxTokens:   800,
		Temperature: 0.3,
		Prompt:      mobilePrompt,
		Limiter:     limiter,
		Retrier:     retrier,
	}
}

// NewSkyworkStrategy returns the secondary strategy. A nil client disables it.
func NewSkyworkStrategy(client llm.ChatClient, model string, limiter *provider.RateLimiter, retrier *provider.Retrier) AIStrategy {
	return AIStrategy{
		Provider:  provider.Skywork,
		Client:    client,
		Model:     model,
		MaxTokens: 600,
		Prompt:    shortPrompt,
		Limiter:   limiter,
		Retrier:   retrier,
	}
}

// Name implements Strategy.
func (s AIStrategy) Name() string {
	return s.Provider.String()
}

// Translate implements Strategy.
func (s AIStrategy) Translate(ctx context.Context, title, description string) (Result, error) {
	if s.Client == nil || s.Model == "" {
		return Result{}, provider.ErrUnavailable
	}
	if s.Limiter != nil && !s.Limiter.Allow(s.Provider) {
		return Result{}, provider.ErrRateLimited
	}

	prompt := s.Prompt
	if prompt == nil {
		prompt = shortPrompt
	}
	req := llm.ChatCompletionRequest{
		Model:       s.Model,
		Messages:    []llm.Message{{Role: "user", Content: prompt(title + "\n" + description)}},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}

	retrier := s.Retrier
	if retrier == nil {
		retrier = provider.NewRetrier(nil)
	}
	raw, err := provider.Do(ctx, retrier, s.Provider, func(ctx context.Context) (string, error) {
		resp, err := s.Client.ChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.Content()
	})
	if err != nil {
		return Result{}, fmt.Errorf("translate: %s: %w", s.Name(), err)
	}

	res := ParseResponse(raw)
	res.Strategy = s.Name()
	return res, nil
}

func mobilePrompt(content string) string {
	return fmt.Sprintf(`다음 영문 뉴스를 한국어로 번역하고 모바일에서 읽기 쉽게 요약해주세요:

%s

요구사항:
1. 제목과 내용을 자연스러운 한국어로 번역
2. 핵심 내용을 3-4개 포인트로 요약 (각 포인트는 한 줄로)
3. 상세한 설명을 2-3문장으로 작성
4. 완전한 번역 내용을 3-4문장으로 작성
5. ** 표시나 굵은 글씨 사용 금지
6. 모바일에서 읽기 쉽게 간결하고 명확하게 작성

형식:
요약: • 첫 번째 핵심 내용
• 두 번째 핵심 내용
• 세 번째 핵심 내용

상세: 더 자세한 설명 (2-3문장)

전문: 완전한 번역 내용 (3-4문장)`, content)
}

func shortPrompt(content string) string {
	return "다음 영문 뉴스를 한국어로 번역하고 요약해주세요. 요약, 상세, 전문 형식으로 작성해주세요: " + content
}
