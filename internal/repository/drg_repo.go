package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// DRGFilter DRG 列表筛选条件
type DRGFilter struct {
	Search string // 匹配 drg_code / drg_name / diagnosis
	Status *int   // 1 启用 0 停用，nil 表示不过滤
}

// DRGRepository DRG 支付政策仓储
type DRGRepository interface {
	// List 按条件分页查询，page.PageSize 为 0 时返回全部
	List(ctx context.Context, filter DRGFilter, page Page) ([]*model.DRGPolicy, int64, error)
	GetByID(ctx context.Context, id uint64) (*model.DRGPolicy, error)
	// GetByCode 按编码查询，不存在返回 nil
	GetByCode(ctx context.Context, code string) (*model.DRGPolicy, error)
	Create(ctx context.Context, p *model.DRGPolicy) error
	// Update 整行更新，记录不存在返回 ErrNotFound
	Update(ctx context.Context, p *model.DRGPolicy) error
	Delete(ctx context.Context, id uint64) error
	// CodeCounts 按编码分组计数
	CodeCounts(ctx context.Context) ([]NameCount, error)
}

type drgRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewDRGRepository 创建 DRGRepository 实例
func NewDRGRepository(st *store.Store) DRGRepository {
	return &drgRepository{db: st.DB(), st: st}
}

func (r *drgRepository) List(ctx context.Context, filter DRGFilter, page Page) ([]*model.DRGPolicy, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.DRGPolicy{})
	db = likeAny(db, filter.Search, "drg_code", "drg_name", "diagnosis")
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return countAndFind[*model.DRGPolicy](db, page, "created_at DESC, id DESC")
}

func (r *drgRepository) GetByID(ctx context.Context, id uint64) (*model.DRGPolicy, error) {
	return findByID[model.DRGPolicy](ctx, r.db, id)
}

func (r *drgRepository) GetByCode(ctx context.Context, code string) (*model.DRGPolicy, error) {
	return findOne[model.DRGPolicy](ctx, r.db, "drg_code = ?", code)
}

func (r *drgRepository) Create(ctx context.Context, p *model.DRGPolicy) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *drgRepository) Update(ctx context.Context, p *model.DRGPolicy) error {
	n, err := updateByID[model.DRGPolicy](ctx, r.db, p.ID, map[string]interface{}{
		"drg_code":         p.DRGCode,
		"drg_name":         p.DRGName,
		"diagnosis":        p.Diagnosis,
		"payment_standard": p.PaymentStandard,
		"effective_date":   p.EffectiveDate,
		"status":           p.Status,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *drgRepository) Delete(ctx context.Context, id uint64) error {
	n, err := deleteByID[model.DRGPolicy](ctx, r.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *drgRepository) CodeCounts(ctx context.Context) ([]NameCount, error) {
	return groupCount(ctx, r.st,
		"SELECT drg_code AS name, COUNT(*) AS count FROM drg_policies GROUP BY drg_code ORDER BY drg_code")
}
