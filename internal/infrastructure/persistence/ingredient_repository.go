package persistence

import (
	"context"
	"errors"

	"ffridge/internal/core/inventory"
	"ffridge/internal/pkg/common"

	"gorm.io/gorm"
)

// IngredientRepository 以 gorm 實作 inventory.Repository
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository 創建食材儲存
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

var _ inventory.Repository = (*IngredientRepository)(nil)

var errIngredientNotFound = common.WrapMessage(common.ErrNotFound, "ingredient not found", nil)

func (r *IngredientRepository) Create(ctx context.Context, ing *inventory.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredientToModel(ing)).Error
}

func (r *IngredientRepository) Update(ctx context.Context, ing *inventory.Ingredient) error {
	result := r.db.WithContext(ctx).
		Model(&IngredientModel{}).
		Where("id = ?", ing.ID).
		Select("*").
		Updates(ingredientToModel(ing))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errIngredientNotFound
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&IngredientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errIngredientNotFound
	}
	return nil
}

func (r *IngredientRepository) Get(ctx context.Context, id string) (*inventory.Ingredient, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errIngredientNotFound
		}
		return nil, err
	}
	ing := model.toDomain()
	return &ing, nil
}

// List 到期時間早的在前，無期限在後
func (r *IngredientRepository) List(ctx context.Context, category inventory.Category) ([]inventory.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&IngredientModel{})
	if category != "" {
		q = q.Where("category = ?", string(category))
	}
	return r.find(q)
}

func (r *IngredientRepository) DeleteExpiringBefore(ctx context.Context, ms int64) (int64, error) {
	result := r.expiringBefore(ctx, ms).Delete(&IngredientModel{})
	return result.RowsAffected, result.Error
}

func (r *IngredientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&IngredientModel{}).Count(&n).Error
	return n, err
}

func (r *IngredientRepository) CountExpiringBefore(ctx context.Context, ms int64) (int64, error) {
	var n int64
	err := r.expiringBefore(ctx, ms).Count(&n).Error
	return n, err
}

func (r *IngredientRepository) expiringBefore(ctx context.Context, ms int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&IngredientModel{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", ms)
}

func (r *IngredientRepository) find(q *gorm.DB) ([]inventory.Ingredient, error) {
	var models []IngredientModel
	err := q.Order("expiry_date IS NULL").
		Order("expiry_date ASC").
		Order("added_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]inventory.Ingredient, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}
