package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// ConversationRepository AI 对话记录仓储
type ConversationRepository interface {
	Create(ctx context.Context, c *model.AIConversation) error
	// List 按时间倒序分页；userID 非空时只返回该用户的记录
	List(ctx context.Context, userID *uint64, page Page) ([]*model.AIConversation, int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(st *store.Store) ConversationRepository {
	return &conversationRepository{db: st.DB()}
}

func (r *conversationRepository) Create(ctx context.Context, c *model.AIConversation) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *conversationRepository) List(ctx context.Context, userID *uint64, page Page) ([]*model.AIConversation, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.AIConversation{})
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	return countAndFind[*model.AIConversation](db, page, "created_at DESC, id DESC")
}
