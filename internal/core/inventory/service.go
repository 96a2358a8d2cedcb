package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"ffridge/internal/core/expiry"
	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
)

// Repository 食材儲存
type Repository interface {
	Create(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Ingredient, error)
	// List 依到期時間排序（無期限在後），category 為空時回傳全部
	List(ctx context.Context, category Category) ([]Ingredient, error)
	// DeleteExpiringBefore 刪除到期時間 <= ms 的食材
	DeleteExpiringBefore(ctx context.Context, ms int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountExpiringBefore(ctx context.Context, ms int64) (int64, error)
}

// RecipeCounter 食譜統計來源
type RecipeCounter interface {
	Counts(ctx context.Context) (total, favorites int64, err error)
}

// Options 服務設定
type Options struct {
	WarningDays int
	Location    *time.Location
	Clock       common.Clock
}

// Service 庫存服務
type Service struct {
	repo    Repository
	recipes RecipeCounter
	opts    Options
}

// NewService 創建庫存服務，recipes 可為 nil
func NewService(repo Repository, recipes RecipeCounter, opts Options) *Service {
	if opts.WarningDays <= 0 {
		opts.WarningDays = expiry.SoonDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = common.SystemClock
	}
	return &Service{repo: repo, recipes: recipes, opts: opts}
}

func (s *Service) now() int64 {
	return common.NowMillis(s.opts.Clock)
}

// startOfToday 當地今天零點（epoch 毫秒）
func (s *Service) startOfToday() int64 {
	y, m, d := s.opts.Clock().In(s.opts.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.opts.Location).UnixMilli()
}

// Validate 檢查食材欄位並正規化
func Validate(ing *Ingredient) error {
	ing.Name = strings.TrimSpace(ing.Name)
	if n := utf8.RuneCountInString(ing.Name); n < MinNameLength || n > MaxNameLength {
		return common.NewValidationError(fmt.Sprintf("name must be between %d and %d characters", MinNameLength, MaxNameLength))
	}

	if ing.Category == "" {
		ing.Category = Other
	}
	c, ok := ParseCategory(string(ing.Category))
	if !ok {
		return common.NewValidationError(fmt.Sprintf("unknown category %q", ing.Category))
	}
	ing.Category = c

	ing.Quantity = strings.TrimSpace(ing.Quantity)
	if ing.Quantity != "" {
		if q, err := strconv.ParseFloat(ing.Quantity, 64); err == nil && (q < MinQuantity || q > MaxQuantity) {
			return common.NewValidationError(fmt.Sprintf("quantity must be between %.2f and %.2f", MinQuantity, MaxQuantity))
		}
	}
	ing.Unit = strings.TrimSpace(ing.Unit)
	ing.Notes = strings.TrimSpace(ing.Notes)

	if ing.Calories != nil && *ing.Calories < 0 {
		return common.NewValidationError("calories must not be negative")
	}
	return nil
}

// Add 新增食材
func (s *Service) Add(ctx context.Context, ing *Ingredient) error {
	if err := Validate(ing); err != nil {
		return err
	}
	if ing.ID == "" {
		ing.ID = common.GenerateUUID()
	}
	if ing.AddedDate == 0 {
		ing.AddedDate = s.now()
	}
	if err := s.repo.Create(ctx, ing); err != nil {
		return fmt.Errorf("failed to add ingredient: %w", err)
	}
	common.LogInfo("新增食材", zap.String("id", ing.ID), zap.String("name", ing.Name))
	return nil
}

// Update 更新食材，新增時間沿用原值
func (s *Service) Update(ctx context.Context, ing *Ingredient) error {
	existing, err := s.repo.Get(ctx, ing.ID)
	if err != nil {
		return err
	}
	if err := Validate(ing); err != nil {
		return err
	}
	ing.AddedDate = existing.AddedDate
	if err := s.repo.Update(ctx, ing); err != nil {
		return fmt.Errorf("failed to update ingredient: %w", err)
	}
	return nil
}

// Delete 刪除食材
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Get 取得食材
func (s *Service) Get(ctx context.Context, id string) (*Ingredient, error) {
	return s.repo.Get(ctx, id)
}

// List 依條件列出食材
func (s *Service) List(ctx context.Context, f Filter) ([]Ingredient, error) {
	var category Category
	if f.Category != "" && f.Category != AllCategories {
		c, ok := ParseCategory(f.Category)
		if !ok {
			return nil, common.NewValidationError(fmt.Sprintf("unknown category %q", f.Category))
		}
		category = c
		f.Category = string(c)
	}

	items, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return f.Apply(items), nil
}

// Classify 以服務設定的時區判斷到期狀態
func (s *Service) Classify(ing Ingredient) expiry.Status {
	return expiry.ClassifyIn(ing.ExpiryDate, s.now(), s.opts.Location)
}

// Overview 列出食材與到期狀態，並統計即將到期與已逾期數量
func (s *Service) Overview(ctx context.Context, f Filter) (*Overview, error) {
	items, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		st := expiry.ClassifyIn(it.ExpiryDate, now, s.opts.Location)
		entries = append(entries, Entry{Ingredient: it, Status: st, Badge: st.Badge()})
	}

	return &Overview{
		Items:  entries,
		Total:  len(entries),
		Counts: expiry.CountByThresholdIn(items, s.opts.WarningDays, now, s.opts.Location),
	}, nil
}

// Expiring 今天起 WarningDays 天內到期的食材（不含已逾期）
func (s *Service) Expiring(ctx context.Context) ([]Entry, error) {
	return s.selectByStatus(ctx, func(st expiry.Status) bool {
		return st.ExpiresWithin(s.opts.WarningDays)
	})
}

// Expired 已逾期的食材
func (s *Service) Expired(ctx context.Context) ([]Entry, error) {
	return s.selectByStatus(ctx, expiry.Status.IsExpired)
}

func (s *Service) selectByStatus(ctx context.Context, keep func(expiry.Status) bool) ([]Entry, error) {
	items, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	now := s.now()
	out := []Entry{}
	for _, it := range items {
		st := expiry.ClassifyIn(it.ExpiryDate, now, s.opts.Location)
		if keep(st) {
			out = append(out, Entry{Ingredient: it, Status: st, Badge: st.Badge()})
		}
	}
	return out, nil
}

// CleanupExpired 刪除到期時間已過的食材，以當下時刻為界（今天稍早到期的也會刪除）
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiringBefore(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired ingredients: %w", err)
	}
	common.LogInfo("清除過期食材", zap.Int64("count", n))
	return n, nil
}

// Stats 食材與食譜統計
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count ingredients: %w", err)
	}
	// 與 Overview 一致以日曆日判定：今天以前到期才算逾期
	expired, err := s.repo.CountExpiringBefore(ctx, s.startOfToday()-1)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired ingredients: %w", err)
	}

	stats := &Stats{TotalIngredients: total, ExpiredIngredients: expired}
	if s.recipes != nil {
		if stats.TotalRecipes, stats.FavoriteRecipes, err = s.recipes.Counts(ctx); err != nil {
			return nil, fmt.Errorf("failed to count recipes: %w", err)
		}
	}
	return stats, nil
}

// ExpiryItems 實作 expiry.Source，供到期檢查器使用
func (s *Service) ExpiryItems(ctx context.Context) ([]expiry.Item, error) {
	items, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]expiry.Item, 0, len(items))
	for _, it := range items {
		out = append(out, expiry.Item{ID: it.ID, Name: it.Name, Expiry: it.ExpiryDate})
	}
	return out, nil
}

// Names 食材名稱（依到期順序）
func (s *Service) Names(ctx context.Context) ([]string, error) {
	items, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}
