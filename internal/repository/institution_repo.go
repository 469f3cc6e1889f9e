package repository

import (
	"context"
	"strings"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// InstitutionFilter 康复机构筛选条件
type InstitutionFilter struct {
	Search     string
	Status     string
	Specialty  string  // 专科包含匹配
	PriceLevel string  // 较低/中等/较高
	MinRating  float64 // 最低评分，0 表示不过滤
}

// InstitutionRepository 康复机构仓储
type InstitutionRepository interface {
	// List 管理端列表：名称/专科搜索 + 状态过滤，按创建时间倒序
	List(ctx context.Context, filter InstitutionFilter, page Page) ([]*model.RehabInstitution, int64, error)
	// ListOpen 用户端列表：仅营业中，按评分倒序、名称升序
	ListOpen(ctx context.Context, filter InstitutionFilter) ([]*model.RehabInstitution, error)
	GetByID(ctx context.Context, id uint64) (*model.RehabInstitution, error)
	// GetOpenByID 仅返回营业中的机构
	GetOpenByID(ctx context.Context, id uint64) (*model.RehabInstitution, error)
	// GetByName 不存在返回 nil
	GetByName(ctx context.Context, name string) (*model.RehabInstitution, error)
	Create(ctx context.Context, inst *model.RehabInstitution) error
	Update(ctx context.Context, inst *model.RehabInstitution) error
	Delete(ctx context.Context, id uint64) error
}

type institutionRepository struct {
	db *gorm.DB
}

// NewInstitutionRepository 创建 InstitutionRepository 实例
func NewInstitutionRepository(st *store.Store) InstitutionRepository {
	return &institutionRepository{db: st.DB()}
}

func (r *institutionRepository) List(ctx context.Context, filter InstitutionFilter, page Page) ([]*model.RehabInstitution, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.RehabInstitution{})
	db = likeAny(db, filter.Search, "name", "specialty")
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return countAndFind[*model.RehabInstitution](db, page, "created_at DESC, id DESC")
}

func (r *institutionRepository) ListOpen(ctx context.Context, filter InstitutionFilter) ([]*model.RehabInstitution, error) {
	db := r.db.WithContext(ctx).Model(&model.RehabInstitution{}).Where("status = ?", model.InstitutionOpen)
	db = likeAny(db, filter.Search, "name", "specialty", "description")
	if s := strings.TrimSpace(filter.Specialty); s != "" {
		db = db.Where("specialty LIKE ?", "%"+s+"%")
	}
	if filter.PriceLevel != "" {
		db = db.Where("price_level = ?", filter.PriceLevel)
	}
	if filter.MinRating > 0 {
		db = db.Where("rating >= ?", filter.MinRating)
	}
	var list []*model.RehabInstitution
	if err := db.Order("rating DESC, name ASC").Find(&list).Error; err != nil {
		return nil, store.WrapError(err)
	}
	return list, nil
}

func (r *institutionRepository) GetByID(ctx context.Context, id uint64) (*model.RehabInstitution, error) {
	return findByID[model.RehabInstitution](ctx, r.db, id)
}

func (r *institutionRepository) GetOpenByID(ctx context.Context, id uint64) (*model.RehabInstitution, error) {
	inst, err := findOne[model.RehabInstitution](ctx, r.db, "id = ? AND status = ?", id, model.InstitutionOpen)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, ErrNotFound
	}
	return inst, nil
}

func (r *institutionRepository) GetByName(ctx context.Context, name string) (*model.RehabInstitution, error) {
	return findOne[model.RehabInstitution](ctx, r.db, "name = ?", name)
}

func (r *institutionRepository) Create(ctx context.Context, inst *model.RehabInstitution) error {
	if err := r.db.WithContext(ctx).Create(inst).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *institutionRepository) Update(ctx context.Context, inst *model.RehabInstitution) error {
	n, err := updateByID[model.RehabInstitution](ctx, r.db, inst.ID, map[string]interface{}{
		"name":        inst.Name,
		"level":       inst.Level,
		"bed_count":   inst.BedCount,
		"specialty":   inst.Specialty,
		"status":      inst.Status,
		"rating":      inst.Rating,
		"price_level": inst.PriceLevel,
		"address":     inst.Address,
		"phone":       inst.Phone,
		"description": inst.Description,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *institutionRepository) Delete(ctx context.Context, id uint64) error {
	n, err := deleteByID[model.RehabInstitution](ctx, r.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
