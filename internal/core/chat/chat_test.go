package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"ffridge/internal/core/ai/provider"
	"ffridge/internal/core/ai/service"
	"ffridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAI struct {
	content string
	err     error
	last    *service.Request
	calls   int
}

func (f *fakeAI) ProcessRequest(_ context.Context, req *service.Request) (*service.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &service.Response{Content: f.content}, nil
}

type memRepo struct {
	msgs []Message
}

func (m *memRepo) Append(_ context.Context, msg *Message) error {
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memRepo) List(_ context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit >= len(m.msgs) {
		return append([]Message(nil), m.msgs...), nil
	}
	return append([]Message(nil), m.msgs[len(m.msgs)-limit:]...), nil
}

func (m *memRepo) Clear(context.Context) error {
	m.msgs = nil
	return nil
}

func newTestService(ai *fakeAI, repo *memRepo) *Service {
	return NewService(ai, repo, Options{
		HistoryLimit: 2,
		Clock:        func() time.Time { return time.UnixMilli(1_700_000_000_000) },
	})
}

func TestSendMessage(t *testing.T) {
	ai := &fakeAI{content: "  Store basil like flowers in water. 🌿  "}
	repo := &memRepo{}
	svc := newTestService(ai, repo)

	reply, err := svc.SendMessage(context.Background(), "  How do I keep basil fresh?  ")
	require.NoError(t, err)
	assert.Equal(t, RoleModel, reply.Role)
	assert.Equal(t, "Store basil like flowers in water. 🌿", reply.Text)
	assert.EqualValues(t, 1_700_000_000_000, reply.Timestamp)
	assert.NotEmpty(t, reply.ID)

	require.Len(t, repo.msgs, 2)
	assert.Equal(t, RoleUser, repo.msgs[0].Role)
	assert.Equal(t, "How do I keep basil fresh?", repo.msgs[0].Text)

	require.NotNil(t, ai.last)
	assert.True(t, ai.last.NoCache)
	require.Len(t, ai.last.Messages, 2)
	assert.Equal(t, provider.RoleSystem, ai.last.Messages[0].Role)
	assert.Contains(t, ai.last.Messages[0].Content, "Chef Bot")
	assert.Equal(t, "User question: How do I keep basil fresh?", ai.last.Messages[1].Content)
}

func TestSendMessageIncludesRecentHistory(t *testing.T) {
	ai := &fakeAI{content: "ok"}
	repo := &memRepo{msgs: []Message{
		{ID: "1", Text: "old", Role: RoleUser},
		{ID: "2", Text: "question", Role: RoleUser},
		{ID: "3", Text: "answer", Role: RoleModel},
	}}
	svc := newTestService(ai, repo)

	_, err := svc.SendMessage(context.Background(), "follow up")
	require.NoError(t, err)

	msgs := ai.last.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, provider.Message{Role: provider.RoleUser, Content: "question"}, msgs[1])
	assert.Equal(t, provider.Message{Role: provider.RoleAssistant, Content: "answer"}, msgs[2])
}

func TestSendMessageBlank(t *testing.T) {
	ai := &fakeAI{content: "ok"}
	repo := &memRepo{}
	svc := newTestService(ai, repo)

	_, err := svc.SendMessage(context.Background(), "   ")
	assert.True(t, common.IsValidationError(err))
	assert.Zero(t, ai.calls)
	assert.Empty(t, repo.msgs)
}

func TestSendMessageBlankReply(t *testing.T) {
	for name, ai := range map[string]*fakeAI{
		"whitespace": {content: " \n "},
		"empty error": {err: common.Wrap(common.ErrAIServiceError, common.ErrEmptyAIContent)},
	} {
		t.Run(name, func(t *testing.T) {
			repo := &memRepo{}
			reply, err := newTestService(ai, repo).SendMessage(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, fallbackReply, reply.Text)
			assert.Len(t, repo.msgs, 2)
		})
	}
}

func TestSendMessageTransportError(t *testing.T) {
	ai := &fakeAI{err: errors.New("dial tcp: connection refused")}
	repo := &memRepo{}
	svc := newTestService(ai, repo)

	_, err := svc.SendMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAIServiceError)
	assert.Contains(t, err.Error(), "trouble connecting")

	// 沒有回覆的問題不寫入歷史，重送也不會重複
	assert.Empty(t, repo.msgs)

	ai.err = nil
	ai.content = "Hello!"
	_, err = svc.SendMessage(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, repo.msgs, 2)
	assert.Equal(t, RoleUser, repo.msgs[0].Role)
	assert.Equal(t, "hi", repo.msgs[0].Text)
	assert.Equal(t, RoleModel, repo.msgs[1].Role)
}

func TestHistoryAndClear(t *testing.T) {
	repo := &memRepo{msgs: []Message{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	svc := newTestService(&fakeAI{}, repo)
	ctx := context.Background()

	all, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, svc.Clear(ctx))
	all, err = svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
