package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"ffridge/internal/core/recipe"
	"ffridge/internal/pkg/common"

	"gorm.io/gorm"
)

// RecipeRepository 以 gorm 實作 recipe.Repository
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository 創建食譜儲存
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

var _ recipe.Repository = (*RecipeRepository)(nil)

var errRecipeNotFound = common.WrapMessage(common.ErrNotFound, "recipe not found", nil)

// Save 新增或覆寫同 ID 的食譜
func (r *RecipeRepository) Save(ctx context.Context, rec *recipe.Recipe) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixMilli()
	}
	return r.db.WithContext(ctx).Save(recipeToModel(rec)).Error
}

func (r *RecipeRepository) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	var model RecipeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRecipeNotFound
		}
		return nil, err
	}
	rec := model.toDomain()
	return &rec, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errRecipeNotFound
	}
	return nil
}

// List 依條件查詢，新到舊
func (r *RecipeRepository) List(ctx context.Context, query recipe.Query) ([]recipe.Recipe, error) {
	q := r.db.WithContext(ctx).Model(&RecipeModel{})
	if query.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}
	if query.Difficulty != "" {
		q = q.Where("difficulty = ?", string(query.Difficulty))
	}
	if query.MaxMinutes > 0 {
		q = q.Where("cooking_time <= ?", query.MaxMinutes)
	}
	if term := strings.ToLower(strings.TrimSpace(query.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var models []RecipeModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *RecipeRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errRecipeNotFound
	}
	return nil
}

func (r *RecipeRepository) Count(ctx context.Context) (total, favorites int64, err error) {
	db := r.db.WithContext(ctx).Model(&RecipeModel{})
	if err = db.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&RecipeModel{}).Where("is_favorite = ?", true).Count(&favorites).Error; err != nil {
		return 0, 0, err
	}
	return total, favorites, nil
}
