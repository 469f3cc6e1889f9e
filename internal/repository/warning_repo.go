package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// WarningFilter 预警筛选条件
type WarningFilter struct {
	Search string // 匹配预警编号 / 医院 / 类型
	Status string
	Type   string
}

// WarningRepository 费用异常预警仓储
type WarningRepository interface {
	List(ctx context.Context, filter WarningFilter, page Page) ([]*model.Warning, int64, error)
	// Recent 最近 limit 条预警
	Recent(ctx context.Context, limit int) ([]*model.Warning, error)
	GetByID(ctx context.Context, id uint64) (*model.Warning, error)
	// GetByWarningID 不存在返回 nil
	GetByWarningID(ctx context.Context, warningID string) (*model.Warning, error)
	Create(ctx context.Context, w *model.Warning) error
	Update(ctx context.Context, w *model.Warning) error
	Delete(ctx context.Context, id uint64) error
	// TypeCounts 按预警类型分组计数
	TypeCounts(ctx context.Context) ([]NameCount, error)
}

type warningRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewWarningRepository 创建 WarningRepository 实例
func NewWarningRepository(st *store.Store) WarningRepository {
	return &warningRepository{db: st.DB(), st: st}
}

func (r *warningRepository) List(ctx context.Context, filter WarningFilter, page Page) ([]*model.Warning, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Warning{})
	db = likeAny(db, filter.Search, "warning_id", "hospital", "type")
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	return countAndFind[*model.Warning](db, page, "warning_time DESC, id DESC")
}

func (r *warningRepository) Recent(ctx context.Context, limit int) ([]*model.Warning, error) {
	var list []*model.Warning
	err := r.db.WithContext(ctx).Order("warning_time DESC, id DESC").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, store.WrapError(err)
	}
	return list, nil
}

func (r *warningRepository) GetByID(ctx context.Context, id uint64) (*model.Warning, error) {
	return findByID[model.Warning](ctx, r.db, id)
}

func (r *warningRepository) GetByWarningID(ctx context.Context, warningID string) (*model.Warning, error) {
	return findOne[model.Warning](ctx, r.db, "warning_id = ?", warningID)
}

func (r *warningRepository) Create(ctx context.Context, w *model.Warning) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *warningRepository) Update(ctx context.Context, w *model.Warning) error {
	n, err := updateByID[model.Warning](ctx, r.db, w.ID, map[string]interface{}{
		"warning_id": w.WarningID,
		"hospital":   w.Hospital,
		"type":       w.Type,
		"amount":     w.Amount,
		"status":     w.Status,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *warningRepository) Delete(ctx context.Context, id uint64) error {
	n, err := deleteByID[model.Warning](ctx, r.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *warningRepository) TypeCounts(ctx context.Context) ([]NameCount, error) {
	return groupCount(ctx, r.st,
		"SELECT type AS name, COUNT(*) AS count FROM warnings GROUP BY type ORDER BY count DESC, type")
}
