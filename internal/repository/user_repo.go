package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// UserRepository 用户仓储
type UserRepository interface {
	// GetActiveByUsername 状态正常的用户，不存在返回 nil
	GetActiveByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByUsername 不区分状态，不存在返回 nil
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetActiveByID 状态正常的用户，不存在返回 nil
	GetActiveByID(ctx context.Context, id uint64) (*model.User, error)
	// Create 旧库缺少 phone / id_card 字段时跳过这两列
	Create(ctx context.Context, u *model.User) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(st *store.Store) UserRepository {
	return &userRepository{db: st.DB(), st: st}
}

func (r *userRepository) GetActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, r.db, "username = ? AND status = ?", username, 1)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, r.db, "username = ?", username)
}

func (r *userRepository) GetActiveByID(ctx context.Context, id uint64) (*model.User, error) {
	return findOne[model.User](ctx, r.db, "id = ? AND status = ?", id, 1)
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	db := r.db.WithContext(ctx)
	var omit []string
	for _, col := range []string{"phone", "id_card"} {
		if !r.st.Schema().HasColumn("users", col) {
			omit = append(omit, col)
		}
	}
	if len(omit) > 0 {
		db = db.Omit(omit...)
	}
	if err := db.Create(u).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.st.Count(ctx, "SELECT COUNT(*) FROM users")
}

func (r *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return r.st.Count(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", role)
}
