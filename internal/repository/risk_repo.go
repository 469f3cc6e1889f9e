package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// RiskFilter 风险事件筛选条件
type RiskFilter struct {
	Search string // 匹配患者姓名 / 医院
	Level  string // 高/中/低
	Status string // 处理状态
}

// RiskRepository 风险事件仓储
type RiskRepository interface {
	List(ctx context.Context, filter RiskFilter, page Page) ([]*model.RiskEvent, int64, error)
	GetByID(ctx context.Context, id uint64) (*model.RiskEvent, error)
	// GetByEventID 不存在返回 nil
	GetByEventID(ctx context.Context, eventID string) (*model.RiskEvent, error)
	Create(ctx context.Context, e *model.RiskEvent) error
	Update(ctx context.Context, e *model.RiskEvent) error
	Delete(ctx context.Context, id uint64) error
	// TypeCounts 按风险类型分组计数
	TypeCounts(ctx context.Context) ([]NameCount, error)
	// LevelCounts 按风险等级分组计数，顺序为 高、中、低
	LevelCounts(ctx context.Context) ([]NameCount, error)
}

type riskRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewRiskRepository 创建 RiskRepository 实例
func NewRiskRepository(st *store.Store) RiskRepository {
	return &riskRepository{db: st.DB(), st: st}
}

func (r *riskRepository) List(ctx context.Context, filter RiskFilter, page Page) ([]*model.RiskEvent, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.RiskEvent{})
	db = likeAny(db, filter.Search, "patient_name", "hospital")
	if filter.Level != "" {
		db = db.Where("risk_level = ?", filter.Level)
	}
	if filter.Status != "" {
		db = db.Where("handle_status = ?", filter.Status)
	}
	return countAndFind[*model.RiskEvent](db, page, "event_time DESC, id DESC")
}

func (r *riskRepository) GetByID(ctx context.Context, id uint64) (*model.RiskEvent, error) {
	return findByID[model.RiskEvent](ctx, r.db, id)
}

func (r *riskRepository) GetByEventID(ctx context.Context, eventID string) (*model.RiskEvent, error) {
	return findOne[model.RiskEvent](ctx, r.db, "event_id = ?", eventID)
}

func (r *riskRepository) Create(ctx context.Context, e *model.RiskEvent) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *riskRepository) Update(ctx context.Context, e *model.RiskEvent) error {
	n, err := updateByID[model.RiskEvent](ctx, r.db, e.ID, map[string]interface{}{
		"event_id":      e.EventID,
		"patient_name":  e.PatientName,
		"hospital":      e.Hospital,
		"risk_type":     e.RiskType,
		"risk_level":    e.RiskLevel,
		"handle_status": e.HandleStatus,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *riskRepository) Delete(ctx context.Context, id uint64) error {
	n, err := deleteByID[model.RiskEvent](ctx, r.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *riskRepository) TypeCounts(ctx context.Context) ([]NameCount, error) {
	return groupCount(ctx, r.st,
		"SELECT risk_type AS name, COUNT(*) AS count FROM risk_events GROUP BY risk_type ORDER BY count DESC, risk_type")
}

func (r *riskRepository) LevelCounts(ctx context.Context) ([]NameCount, error) {
	return groupCount(ctx, r.st,
		"SELECT risk_level AS name, COUNT(*) AS count FROM risk_events GROUP BY risk_level "+
			"ORDER BY CASE risk_level WHEN ? THEN 1 WHEN ? THEN 2 ELSE 3 END",
		model.RiskHigh, model.RiskMedium)
}
