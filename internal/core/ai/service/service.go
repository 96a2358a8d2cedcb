package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ffridge/internal/core/ai/cache"
	"ffridge/internal/core/ai/provider"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
)

// Request AI 請求
type Request struct {
	Messages    []provider.Message
	MaxTokens   int
	Temperature float64
	// NoCache 不讀寫快取（例如多輪對話）
	NoCache bool
	// Accept 回傳 false 時不寫入快取，nil 表示全部接受
	Accept func(content string) bool
}

// Response AI 回應結構
type Response struct {
	Content  string
	Model    string
	Provider string
	Cached   bool
}

// Service AI 服務：快取 + 提供者
type Service struct {
	provider    provider.Provider
	cache       cache.Store
	temperature float64
}

// Option 服務選項
type Option func(*Service)

// WithTemperature 設定預設溫度
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// NewService 創建 AI 服務，store 可為 nil
func NewService(p provider.Provider, store cache.Store, opts ...Option) *Service {
	s := &Service{provider: p, cache: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessRequest 統一對外方法，不自動重試
func (s *Service) ProcessRequest(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, common.WrapMessage(common.ErrInvalidRequest, "empty AI request", nil)
	}

	key := ""
	if s.cache != nil && !req.NoCache {
		key = s.cacheKey(req)
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			return &Response{Content: val, Model: s.provider.GetModel(), Provider: s.provider.Name(), Cached: true}, nil
		} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = s.temperature
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &provider.Request{
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	common.LogAICall(s.provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, common.Wrap(common.ErrAIServiceError, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, common.Wrap(common.ErrAIServiceError, common.ErrEmptyAIContent)
	}

	if key != "" && (req.Accept == nil || req.Accept(resp.Content)) {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}

	return &Response{Content: resp.Content, Model: resp.Model, Provider: s.provider.Name()}, nil
}

// CacheStats 快取統計，停用時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}

// cacheKey 統一 prompt 格式，去除多餘空白確保快取 key 一致
func (s *Service) cacheKey(req *Request) string {
	parts := []string{s.provider.Name(), s.provider.GetModel()}
	for _, m := range req.Messages {
		parts = append(parts, m.Role, strings.Join(strings.Fields(m.Content), " "))
	}
	return cache.Key("ai", parts...)
}
