package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ffridge/internal/core/ai/provider"
	"ffridge/internal/core/ai/service"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
)

// AIClient 文字生成
type AIClient interface {
	ProcessRequest(ctx context.Context, req *service.Request) (*service.Response, error)
}

// Repository 已存食譜
type Repository interface {
	Save(ctx context.Context, r *Recipe) error
	Get(ctx context.Context, id string) (*Recipe, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q Query) ([]Recipe, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
	Count(ctx context.Context) (total, favorites int64, err error)
}

// Service 食譜生成與食譜本
type Service struct {
	ai      AIClient
	repo    Repository
	batch   ResponseParser
	single  ResponseParser
	lastGen *recentTitles
}

// maxRememberedCombos 記住上次菜名的食材組合上限
const maxRememberedCombos = 256

// recentTitles 食材組合 -> 上次生成的菜名，超過上限時淘汰最早的組合
type recentTitles struct {
	mu    sync.Mutex
	max   int
	order []string
	items map[string][]string
}

func newRecentTitles(max int) *recentTitles {
	return &recentTitles{max: max, items: make(map[string][]string)}
}

func (r *recentTitles) get(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[key]
}

func (r *recentTitles) put(key string, titles []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
		for len(r.order) > r.max {
			delete(r.items, r.order[0])
			r.order = r.order[1:]
		}
	}
	r.items[key] = titles
}

func (r *recentTitles) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// NewService 創建新的食譜服務，repo 可為 nil（僅生成不儲存）
func NewService(ai AIClient, repo Repository, opts ...ParserOption) *Service {
	return &Service{
		ai:      ai,
		repo:    repo,
		batch:   NewParser(ModeBatch, opts...),
		single:  NewParser(ModeSingle, opts...),
		lastGen: newRecentTitles(maxRememberedCombos),
	}
}

// GenerateRecipes 依食材一次生成五道食譜
func (s *Service) GenerateRecipes(ctx context.Context, ingredients []string) ([]Recipe, error) {
	names := common.CleanStrings(ingredients)
	if len(names) == 0 {
		return nil, common.NewValidationError("at least one ingredient is required")
	}

	key := ingredientKey(names)
	avoid := s.lastGen.get(key)

	recipes, err := s.generate(ctx, ModeBatch, BuildBatchPrompt(names, avoid), names)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(recipes))
	for _, r := range recipes {
		titles = append(titles, r.Title)
	}
	s.lastGen.put(key, titles)
	return recipes, nil
}

// GenerateRecipe 依食材生成單一食譜
func (s *Service) GenerateRecipe(ctx context.Context, ingredients []string) (*Recipe, error) {
	names := common.CleanStrings(ingredients)
	if len(names) == 0 {
		return nil, common.NewValidationError("at least one ingredient is required")
	}

	recipes, err := s.generate(ctx, ModeSingle, BuildSinglePrompt(names), names)
	if err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// generate 呼叫 AI 並以對應策略解析，解析不出食譜的回應不寫入快取
func (s *Service) generate(ctx context.Context, mode Mode, prompt string, names []string) ([]Recipe, error) {
	parser := s.batch
	if mode == ModeSingle {
		parser = s.single
	}

	var recipes []Recipe
	parsed := false
	resp, err := s.ai.ProcessRequest(ctx, &service.Request{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: prompt}},
		// 同一組食材重新生成時不希望拿到快取的同一批
		NoCache: mode == ModeBatch,
		Accept: func(content string) bool {
			recipes, parsed = parser.Parse(content, names), true
			return len(recipes) > 0
		},
	})
	if err != nil {
		if errors.Is(err, common.ErrAIServiceError) {
			return nil, err
		}
		return nil, common.Wrap(common.ErrAIServiceError, err)
	}

	if !parsed {
		recipes = parser.Parse(resp.Content, names)
	}
	common.LogDebug("AI 回應內容 (recipe/generate)",
		zap.String("mode", mode.String()),
		zap.Int("ai_response_length", len(resp.Content)),
		zap.Int("recipes", len(recipes)),
	)
	if len(recipes) == 0 {
		return nil, common.WrapMessage(common.ErrNoRecipes, "Failed to generate recipes. Please try again.", nil)
	}

	common.LogInfo("食譜生成完成",
		zap.String("mode", mode.String()),
		zap.Int("count", len(recipes)),
		zap.Bool("cached", resp.Cached),
	)
	return recipes, nil
}

func ingredientKey(names []string) string {
	sorted := make([]string, len(names))
	for i, n := range names {
		sorted[i] = strings.ToLower(n)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// ---------------- 食譜本 ----------------

func (s *Service) requireRepo() error {
	if s.repo == nil {
		return common.WrapMessage(common.ErrServiceUnavailable, "recipe book is not configured", nil)
	}
	return nil
}

// Save 儲存食譜
func (s *Service) Save(ctx context.Context, r *Recipe) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	if r == nil || strings.TrimSpace(r.Title) == "" {
		return common.NewValidationError("recipe title is required")
	}
	if r.ID == "" {
		r.ID = common.GenerateUUID()
	}
	if !r.Difficulty.Valid() {
		r.Difficulty = Medium
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// SaveAll 儲存多筆食譜
func (s *Service) SaveAll(ctx context.Context, recipes []Recipe) error {
	for i := range recipes {
		if err := s.Save(ctx, &recipes[i]); err != nil {
			return err
		}
	}
	return nil
}

// Get 取得食譜
func (s *Service) Get(ctx context.Context, id string) (*Recipe, error) {
	if err := s.requireRepo(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete 刪除食譜
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.requireRepo(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List 依條件列出已存食譜（新到舊）
func (s *Service) List(ctx context.Context, q Query) ([]Recipe, error) {
	if err := s.requireRepo(); err != nil {
		return nil, err
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("unknown difficulty %q", q.Difficulty))
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.List(ctx, q)
}

// Favorites 收藏的食譜
func (s *Service) Favorites(ctx context.Context) ([]Recipe, error) {
	return s.List(ctx, Query{FavoritesOnly: true})
}

// ByDifficulty 依難度篩選
func (s *Service) ByDifficulty(ctx context.Context, d Difficulty) ([]Recipe, error) {
	return s.List(ctx, Query{Difficulty: d})
}

// MaxTime 烹飪時間不超過 minutes
func (s *Service) MaxTime(ctx context.Context, minutes int) ([]Recipe, error) {
	if minutes <= 0 {
		return nil, common.NewValidationError("max time must be positive")
	}
	return s.List(ctx, Query{MaxMinutes: minutes})
}

// Quick 三十分鐘內完成的食譜
func (s *Service) Quick(ctx context.Context) ([]Recipe, error) {
	return s.MaxTime(ctx, QuickMaxMinutes)
}

// Search 標題或描述包含關鍵字（不分大小寫）
func (s *Service) Search(ctx context.Context, term string) ([]Recipe, error) {
	return s.List(ctx, Query{Search: term})
}

// ToggleFavorite 切換收藏狀態並回傳更新後的食譜
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*Recipe, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.IsFavorite = !r.IsFavorite
	if err := s.repo.SetFavorite(ctx, id, r.IsFavorite); err != nil {
		return nil, fmt.Errorf("failed to update favorite: %w", err)
	}
	return r, nil
}

// Counts 食譜總數與收藏數
func (s *Service) Counts(ctx context.Context) (total, favorites int64, err error) {
	if err := s.requireRepo(); err != nil {
		return 0, 0, err
	}
	return s.repo.Count(ctx)
}
