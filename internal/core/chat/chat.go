// Package chat 二廚對話
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ffridge/internal/core/ai/provider"
	"ffridge/internal/core/ai/service"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
)

// Role 訊息角色
type Role string

const (
	RoleUser  Role = "USER"
	RoleModel Role = "MODEL"
)

// Message 對話訊息
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp"` // epoch 毫秒
}

// Repository 對話紀錄儲存
type Repository interface {
	Append(ctx context.Context, m *Message) error
	// List 依時間由舊到新，limit <= 0 表示全部
	List(ctx context.Context, limit int) ([]Message, error)
	Clear(ctx context.Context) error
}

// AIClient 文字生成
type AIClient interface {
	ProcessRequest(ctx context.Context, req *service.Request) (*service.Response, error)
}

const systemPrompt = `You are a professional Sous Chef AI assistant named Chef Bot.
Your role: Help users with cooking questions, food storage tips, substitutions, and recipe ideas.

Guidelines:
- Be friendly, warm, and encouraging
- Keep responses concise (under 150 words)
- Use cooking emojis when appropriate
- Provide practical, actionable advice
- If you don't know something, admit it honestly`

const (
	fallbackReply     = "I apologize, but I couldn't generate a proper response. Could you please rephrase your question?"
	connectionMessage = "I'm having trouble connecting right now. Please check your internet connection and try again."

	// DefaultHistoryLimit 送給模型的歷史訊息數
	DefaultHistoryLimit = 10
	// MaxMessageLength 單則訊息字數上限
	MaxMessageLength = 2000
	chatMaxTokens    = 2048
)

// Options 服務設定
type Options struct {
	HistoryLimit int
	Clock        common.Clock
}

// Service 對話服務
type Service struct {
	ai   AIClient
	repo Repository
	opts Options
}

// NewService 創建對話服務
func NewService(ai AIClient, repo Repository, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock
	}
	return &Service{ai: ai, repo: repo, opts: opts}
}

func (s *Service) newMessage(role Role, text string) *Message {
	return &Message{
		ID:        common.GenerateUUID(),
		Text:      text,
		Role:      role,
		Timestamp: common.NowMillis(s.opts.Clock),
	}
}

// SendMessage 儲存使用者訊息、向模型提問並儲存回覆
func (s *Service) SendMessage(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("message must not be empty")
	}
	if len([]rune(text)) > MaxMessageLength {
		return nil, common.NewValidationError(fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}

	history, err := s.repo.List(ctx, s.opts.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	// 使用者訊息在取得回覆後才寫入，失敗時歷史不留下沒有回覆的問題
	question := s.newMessage(RoleUser, text)
	resp, err := s.ai.ProcessRequest(ctx, &service.Request{
		Messages:  buildMessages(history, text),
		MaxTokens: chatMaxTokens,
		NoCache:   true,
	})
	var reply string
	switch {
	case err == nil:
		reply = strings.TrimSpace(resp.Content)
	case errors.Is(err, common.ErrEmptyAIContent):
		reply = ""
	default:
		common.LogError("對話請求失敗", zap.Error(err))
		return nil, common.WrapMessage(common.ErrAIServiceError, connectionMessage, err)
	}
	if reply == "" {
		reply = fallbackReply
	}

	if err := s.repo.Append(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	m := s.newMessage(RoleModel, reply)
	if err := s.repo.Append(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save reply: %w", err)
	}
	return m, nil
}

// buildMessages 系統提示 + 歷史 + 本次問題
func buildMessages(history []Message, text string) []provider.Message {
	msgs := make([]provider.Message, 0, len(history)+2)
	msgs = append(msgs, provider.Message{Role: provider.RoleSystem, Content: systemPrompt})
	for _, h := range history {
		role := provider.RoleUser
		if h.Role == RoleModel {
			role = provider.RoleAssistant
		}
		msgs = append(msgs, provider.Message{Role: role, Content: h.Text})
	}
	return append(msgs, provider.Message{Role: provider.RoleUser, Content: "User question: " + text})
}

// History 全部對話紀錄
func (s *Service) History(ctx context.Context) ([]Message, error) {
	return s.repo.List(ctx, 0)
}

// Clear 清除對話紀錄
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear chat: %w", err)
	}
	return nil
}
