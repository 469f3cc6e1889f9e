package repository

import (
	"context"
	"time"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// TransferFilter 转院申请筛选条件
type TransferFilter struct {
	Status string
	UserID *uint64 // 非空时只返回该用户的申请
}

// TransferView 申请 + 目标医院信息（LEFT JOIN hospitals）
type TransferView struct {
	model.TransferApplication
	ToHospitalName    string `gorm:"column:to_hospital_name" json:"toHospitalName"`
	ToHospitalLevel   string `gorm:"column:to_hospital_level" json:"toHospitalLevel"`
	ToHospitalAddress string `gorm:"column:to_hospital_address" json:"toHospitalAddress"`
	ToHospitalPhone   string `gorm:"column:to_hospital_phone" json:"toHospitalPhone"`
}

// TransferStats 申请数量统计
type TransferStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Today    int64 `json:"today"`
	Week     int64 `json:"week"`
	Month    int64 `json:"month"`
}

// TransferRepository 转院申请仓储
type TransferRepository interface {
	Create(ctx context.Context, app *model.TransferApplication) error
	GetByID(ctx context.Context, id uint64) (*model.TransferApplication, error)
	// GetView 带目标医院信息的详情；ownerID 非空时只查该用户的申请
	GetView(ctx context.Context, id uint64, ownerID *uint64) (*TransferView, error)
	// List 按申请时间倒序
	List(ctx context.Context, filter TransferFilter) ([]*TransferView, error)
	// Transition 条件更新：仅当当前状态为 from 时改为 to，返回受影响行数
	Transition(ctx context.Context, id uint64, from, to, comment string) (int64, error)
	// StatusCounts 按状态分组计数
	StatusCounts(ctx context.Context) ([]NameCount, error)
	// Stats 总数、各状态数以及今日/近7天/近30天申请数
	Stats(ctx context.Context, now time.Time) (*TransferStats, error)
}

type transferRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewTransferRepository 创建 TransferRepository 实例
func NewTransferRepository(st *store.Store) TransferRepository {
	return &transferRepository{db: st.DB(), st: st}
}

func (r *transferRepository) Create(ctx context.Context, app *model.TransferApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id uint64) (*model.TransferApplication, error) {
	return findByID[model.TransferApplication](ctx, r.db, id)
}

// viewQuery 旧库可能没有 to_hospital_id，此时不做 JOIN
func (r *transferRepository) viewQuery(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx).Table("transfer_applications t")
	if !r.st.Schema().HasColumn("transfer_applications", "to_hospital_id") {
		return db.Select("t.*")
	}
	return db.Select("t.*, " +
		"COALESCE(h.name, '') AS to_hospital_name, " +
		"COALESCE(h.level, '') AS to_hospital_level, " +
		"COALESCE(h.address, '') AS to_hospital_address, " +
		"COALESCE(h.phone, '') AS to_hospital_phone").
		Joins("LEFT JOIN hospitals h ON t.to_hospital_id = h.id")
}

func (r *transferRepository) hasOwner() bool {
	return r.st.Schema().HasColumn("transfer_applications", "user_id")
}

func (r *transferRepository) GetView(ctx context.Context, id uint64, ownerID *uint64) (*TransferView, error) {
	db := r.viewQuery(ctx).Where("t.id = ?", id)
	if ownerID != nil {
		if !r.hasOwner() {
			return nil, ErrNotFound
		}
		db = db.Where("t.user_id = ?", *ownerID)
	}
	var list []*TransferView
	if err := db.Limit(1).Scan(&list).Error; err != nil {
		return nil, store.WrapError(err)
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (r *transferRepository) List(ctx context.Context, filter TransferFilter) ([]*TransferView, error) {
	db := r.viewQuery(ctx)
	if filter.UserID != nil {
		// 无 user_id 列时无法判定归属，按无记录处理
		if !r.hasOwner() {
			return []*TransferView{}, nil
		}
		db = db.Where("t.user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("t.status = ?", filter.Status)
	}
	var list []*TransferView
	if err := db.Order("t.apply_time DESC, t.id DESC").Scan(&list).Error; err != nil {
		return nil, store.WrapError(err)
	}
	return list, nil
}

func (r *transferRepository) Transition(ctx context.Context, id uint64, from, to, comment string) (int64, error) {
	res, err := r.st.Exec(ctx,
		"UPDATE transfer_applications SET status = ?, admin_comment = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, comment, r.db.NowFunc(), id, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func (r *transferRepository) StatusCounts(ctx context.Context) ([]NameCount, error) {
	return groupCount(ctx, r.st,
		"SELECT status AS name, COUNT(*) AS count FROM transfer_applications GROUP BY status ORDER BY status")
}

func (r *transferRepository) Stats(ctx context.Context, now time.Time) (*TransferStats, error) {
	stats := &TransferStats{}
	counts, err := r.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Name {
		case model.TransferPending:
			stats.Pending = c.Count
		case model.TransferApproved:
			stats.Approved = c.Count
		case model.TransferRejected:
			stats.Rejected = c.Count
		}
	}

	today, week, month := StatWindows(now)
	bounds := []struct {
		since time.Time
		dst   *int64
	}{
		{today, &stats.Today},
		{week, &stats.Week},
		{month, &stats.Month},
	}
	for _, b := range bounds {
		n, err := r.st.Count(ctx, "SELECT COUNT(*) FROM transfer_applications WHERE apply_time >= ?", b.since)
		if err != nil {
			return nil, err
		}
		*b.dst = n
	}
	return stats, nil
}

// StatWindows 统计窗口起点，按自然日计：今日零点、7天前零点、30天前零点
func StatWindows(now time.Time) (today, week, month time.Time) {
	today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today, today.AddDate(0, 0, -7), today.AddDate(0, 0, -30)
}
