package repository

import (
	"context"
	"strings"

	"MedGuard/internal/model"
	"MedGuard/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HospitalFilter 转院医院目录筛选条件
type HospitalFilter struct {
	Search    string
	Specialty string
	Level     string
	SortBy    string // rating（默认）/ cost / name
}

// ReviewView 评价 + 评价人
type ReviewView struct {
	model.HospitalReview
	RealName string `gorm:"column:real_name" json:"realName"`
	Username string `gorm:"column:username" json:"username"`
}

// HospitalRepository 医院目录与评价仓储
type HospitalRepository interface {
	// ListOpen 营业中的医院
	ListOpen(ctx context.Context, filter HospitalFilter) ([]*model.Hospital, error)
	GetByID(ctx context.Context, id uint64) (*model.Hospital, error)
	// GetByName 不存在返回 nil
	GetByName(ctx context.Context, name string) (*model.Hospital, error)
	Create(ctx context.Context, h *model.Hospital) error
	// Update 更新目录信息，不修改评分与评价数
	Update(ctx context.Context, h *model.Hospital) error
	Delete(ctx context.Context, id uint64) error

	// RecentReviews 批量查询每家医院最近 limit 条评价
	RecentReviews(ctx context.Context, hospitalIDs []uint64, limit int) (map[uint64][]*model.HospitalReview, error)
	// Reviews 医院全部评价（含评价人姓名）
	Reviews(ctx context.Context, hospitalID uint64) ([]*ReviewView, error)
	AddReview(ctx context.Context, review *model.HospitalReview) error
	// RecomputeRating 读取全部评分求均值（保留两位小数）并回写 rating / rating_count
	RecomputeRating(ctx context.Context, hospitalID uint64) (float64, int, error)
}

type hospitalRepository struct {
	db *gorm.DB
	st *store.Store
}

// NewHospitalRepository 创建 HospitalRepository 实例
func NewHospitalRepository(st *store.Store) HospitalRepository {
	return &hospitalRepository{db: st.DB(), st: st}
}

func (r *hospitalRepository) ListOpen(ctx context.Context, filter HospitalFilter) ([]*model.Hospital, error) {
	db := r.db.WithContext(ctx).Model(&model.Hospital{}).Where("status = ?", model.InstitutionOpen)
	db = likeAny(db, filter.Search, "name", "specialty", "description")
	if s := strings.TrimSpace(filter.Specialty); s != "" {
		db = db.Where("specialty LIKE ?", "%"+s+"%")
	}
	if filter.Level != "" {
		db = db.Where("level = ?", filter.Level)
	}

	switch filter.SortBy {
	case "cost":
		db = db.Order("average_cost ASC")
	case "name":
		db = db.Order("name ASC")
	default:
		db = db.Order("rating DESC, rating_count DESC")
	}

	var list []*model.Hospital
	if err := db.Find(&list).Error; err != nil {
		return nil, store.WrapError(err)
	}
	return list, nil
}

func (r *hospitalRepository) GetByID(ctx context.Context, id uint64) (*model.Hospital, error) {
	return findByID[model.Hospital](ctx, r.db, id)
}

func (r *hospitalRepository) GetByName(ctx context.Context, name string) (*model.Hospital, error) {
	return findOne[model.Hospital](ctx, r.db, "name = ?", name)
}

func (r *hospitalRepository) Create(ctx context.Context, h *model.Hospital) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *hospitalRepository) Update(ctx context.Context, h *model.Hospital) error {
	n, err := updateByID[model.Hospital](ctx, r.db, h.ID, map[string]interface{}{
		"name":         h.Name,
		"level":        h.Level,
		"specialty":    h.Specialty,
		"address":      h.Address,
		"phone":        h.Phone,
		"description":  h.Description,
		"average_cost": h.AverageCost,
		"status":       h.Status,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *hospitalRepository) Delete(ctx context.Context, id uint64) error {
	n, err := deleteByID[model.Hospital](ctx, r.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	// 评价随医院一并删除
	if err := r.db.WithContext(ctx).Where("hospital_id = ?", id).Delete(&model.HospitalReview{}).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *hospitalRepository) RecentReviews(ctx context.Context, hospitalIDs []uint64, limit int) (map[uint64][]*model.HospitalReview, error) {
	out := make(map[uint64][]*model.HospitalReview, len(hospitalIDs))
	if len(hospitalIDs) == 0 {
		return out, nil
	}
	var reviews []*model.HospitalReview
	err := r.db.WithContext(ctx).
		Where("hospital_id IN ?", hospitalIDs).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, store.WrapError(err)
	}
	for _, rv := range reviews {
		if limit > 0 && len(out[rv.HospitalID]) >= limit {
			continue
		}
		out[rv.HospitalID] = append(out[rv.HospitalID], rv)
	}
	return out, nil
}

func (r *hospitalRepository) Reviews(ctx context.Context, hospitalID uint64) ([]*ReviewView, error) {
	var list []*ReviewView
	err := r.db.WithContext(ctx).
		Table("hospital_reviews r").
		Select("r.*, COALESCE(u.real_name, '') AS real_name, COALESCE(u.username, '') AS username").
		Joins("LEFT JOIN users u ON r.user_id = u.id").
		Where("r.hospital_id = ?", hospitalID).
		Order("r.created_at DESC, r.id DESC").
		Scan(&list).Error
	if err != nil {
		return nil, store.WrapError(err)
	}
	return list, nil
}

func (r *hospitalRepository) AddReview(ctx context.Context, review *model.HospitalReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return store.WrapError(err)
	}
	return nil
}

func (r *hospitalRepository) RecomputeRating(ctx context.Context, hospitalID uint64) (float64, int, error) {
	rows, err := r.st.QueryAll(ctx, "SELECT rating FROM hospital_reviews WHERE hospital_id = ?", hospitalID)
	if err != nil {
		return 0, 0, err
	}
	mean := MeanRating(rows)
	rating, _ := mean.Float64()

	_, err = r.st.Exec(ctx,
		"UPDATE hospitals SET rating = ?, rating_count = ?, updated_at = ? WHERE id = ?",
		rating, len(rows), r.db.NowFunc(), hospitalID)
	if err != nil {
		return 0, 0, err
	}
	return rating, len(rows), nil
}

// MeanRating 评分均值，四舍五入保留两位小数；无评分返回 0
func MeanRating(rows []map[string]interface{}) decimal.Decimal {
	if len(rows) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(decimal.NewFromInt(asInt64(row["rating"])))
	}
	return sum.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
}
