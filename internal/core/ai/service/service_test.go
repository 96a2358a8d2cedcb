package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ffridge/internal/core/ai/cache"
	"ffridge/internal/core/ai/provider"
	"ffridge/internal/infrastructure/config"
	"ffridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	content string
	err     error
	calls   int
	last    *provider.Request
}

func (s *stubProvider) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &provider.Response{Content: s.content, Model: "stub-model"}, nil
}

func (s *stubProvider) Name() string              { return "stub" }
func (s *stubProvider) GetModel() string          { return "stub-model" }
func (s *stubProvider) GetTimeout() time.Duration { return time.Second }
func (s *stubProvider) Close() error              { return nil }

func userMsg(text string) []provider.Message {
	return []provider.Message{{Role: provider.RoleUser, Content: text}}
}

func TestProcessRequestUsesCache(t *testing.T) {
	p := &stubProvider{content: "soup"}
	store := cache.NewMemoryStore(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	defer store.Close()
	svc := NewService(p, store, WithTemperature(0.4))

	ctx := context.Background()
	first, err := svc.ProcessRequest(ctx, &Request{Messages: userMsg("make  soup")})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 0.4, p.last.Temperature)

	second, err := svc.ProcessRequest(ctx, &Request{Messages: userMsg("make soup")})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "soup", second.Content)
	assert.Equal(t, 1, p.calls)
}

func TestProcessRequestNoCache(t *testing.T) {
	p := &stubProvider{content: "hi"}
	store := cache.NewMemoryStore(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	defer store.Close()
	svc := NewService(p, store)

	for i := 0; i < 2; i++ {
		_, err := svc.ProcessRequest(context.Background(), &Request{Messages: userMsg("hello"), NoCache: true})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.calls)
}

func TestProcessRequestSkipsCacheForRejectedContent(t *testing.T) {
	p := &stubProvider{content: "not what we asked for"}
	store := cache.NewMemoryStore(config.CacheConfig{MaxSize: 10, TTL: time.Minute})
	defer store.Close()
	svc := NewService(p, store)

	var seen []string
	reject := func(content string) bool {
		seen = append(seen, content)
		return false
	}
	for i := 0; i < 2; i++ {
		resp, err := svc.ProcessRequest(context.Background(), &Request{Messages: userMsg("recipe"), Accept: reject})
		require.NoError(t, err)
		assert.False(t, resp.Cached)
	}
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, []string{"not what we asked for", "not what we asked for"}, seen)
}

func TestProcessRequestWrapsProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(&stubProvider{err: cause}, nil)

	_, err := svc.ProcessRequest(context.Background(), &Request{Messages: userMsg("hello")})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAIServiceError)
	assert.ErrorIs(t, err, cause)
}

func TestProcessRequestBlankContent(t *testing.T) {
	svc := NewService(&stubProvider{content: "   "}, nil)
	_, err := svc.ProcessRequest(context.Background(), &Request{Messages: userMsg("hello")})
	assert.ErrorIs(t, err, common.ErrAIServiceError)
	assert.ErrorIs(t, err, common.ErrEmptyAIContent)
}

func TestProcessRequestEmpty(t *testing.T) {
	svc := NewService(&stubProvider{}, nil)
	_, err := svc.ProcessRequest(context.Background(), &Request{})
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
	assert.Nil(t, svc.CacheStats())
}
