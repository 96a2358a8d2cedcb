package persistence

import (
	"context"

	"ffridge/internal/core/chat"

	"gorm.io/gorm"
)

// ChatRepository 以 gorm 實作 chat.Repository
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository 創建對話紀錄儲存
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

var _ chat.Repository = (*ChatRepository)(nil)

func (r *ChatRepository) Append(ctx context.Context, m *chat.Message) error {
	return r.db.WithContext(ctx).Create(messageToModel(m)).Error
}

// List 取最近 limit 筆，依寫入順序由舊到新
func (r *ChatRepository) List(ctx context.Context, limit int) ([]chat.Message, error) {
	var models []ChatMessageModel
	q := r.db.WithContext(ctx).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]chat.Message, len(models))
	for i := range models {
		out[len(models)-1-i] = models[i].toDomain()
	}
	return out, nil
}

func (r *ChatRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ChatMessageModel{}).Error
}
