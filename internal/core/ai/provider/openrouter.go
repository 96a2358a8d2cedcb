package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ffridge/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouter OpenRouter chat/completions 提供者
type OpenRouter struct {
	cfg    Config
	client *resty.Client
}

// openRouterRequest 表示 API 請求
type openRouterRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// openRouterResponse OpenRouter 響應結構
type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// NewOpenRouter 創建 OpenRouter 提供者
func NewOpenRouter(cfg Config) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://ffridge.app").
		SetHeader("X-Title", "FFridge")

	return &OpenRouter{cfg: cfg, client: client}
}

// Generate 生成回應
func (o *OpenRouter) Generate(ctx context.Context, req *Request) (*Response, error) {
	body := openRouterRequest{
		Model:       o.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = o.cfg.MaxTokens
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
	)

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if err := statusError("OpenRouter", resp); err != nil {
		return nil, err
	}

	var result openRouterResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, common.ErrEmptyAIContent
	}

	model := result.Model
	if model == "" {
		model = body.Model
	}
	return &Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// Name 提供者名稱
func (o *OpenRouter) Name() string { return "openrouter" }

// GetModel 獲取當前使用的模型名稱
func (o *OpenRouter) GetModel() string { return o.cfg.Model }

// GetTimeout 獲取請求超時時間
func (o *OpenRouter) GetTimeout() time.Duration { return o.cfg.Timeout }

// Close 關閉客戶端
func (o *OpenRouter) Close() error {
	o.client.GetClient().CloseIdleConnections()
	return nil
}

// statusError 將非 200 回應轉為錯誤
func statusError(name string, resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return common.WrapMessage(common.ErrAIRateLimited, name+" rate limit exceeded", nil)
	default:
		common.LogError("AI service returned error status",
			zap.String("provider", name),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("response", truncate(resp.String(), 512)),
		)
		return fmt.Errorf("%s API returned error (status %d): %s", name, resp.StatusCode(), truncate(resp.String(), 512))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
