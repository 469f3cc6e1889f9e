package service

import (
	"context"
	"strings"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

const recentReviewLimit = 5

// HospitalInput 新增/修改医院参数
type HospitalInput struct {
	Name        string  `json:"name"`
	Level       string  `json:"level"`
	Specialty   string  `json:"specialty"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Description string  `json:"description"`
	AverageCost float64 `json:"averageCost"`
	Status      string  `json:"status"`
}

// ReviewInput 评价参数
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HospitalSummary 列表项：医院 + 最近评价
type HospitalSummary struct {
	*model.Hospital
	RecentReviews []*model.HospitalReview `json:"recentReviews"`
}

// HospitalDetail 详情：医院 + 全部评价
type HospitalDetail struct {
	*model.Hospital
	Reviews []*repository.ReviewView `json:"reviews"`
}

// ReviewResult 评价后的医院评分
type ReviewResult struct {
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
}

// HospitalService 转院医院目录与评价
type HospitalService struct {
	repo   repository.HospitalRepository
	logger *logrus.Logger
}

// NewHospitalService 创建 HospitalService
func NewHospitalService(repo repository.HospitalRepository, logger *logrus.Logger) *HospitalService {
	return &HospitalService{repo: repo, logger: logger}
}

// List 营业中的医院，每家附最近 5 条评价
func (s *HospitalService) List(ctx context.Context, filter repository.HospitalFilter) (*ListResult[*HospitalSummary], error) {
	hospitals, err := s.repo.ListOpen(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(hospitals))
	for _, h := range hospitals {
		ids = append(ids, h.ID)
	}
	reviews, err := s.repo.RecentReviews(ctx, ids, recentReviewLimit)
	if err != nil {
		return nil, err
	}

	list := make([]*HospitalSummary, 0, len(hospitals))
	for _, h := range hospitals {
		rv := reviews[h.ID]
		if rv == nil {
			rv = []*model.HospitalReview{}
		}
		list = append(list, &HospitalSummary{Hospital: h, RecentReviews: rv})
	}
	return &ListResult[*HospitalSummary]{List: list, Total: int64(len(list))}, nil
}

// Get 详情（含全部评价）
func (s *HospitalService) Get(ctx context.Context, id uint64) (*HospitalDetail, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "医院不存在")
	}
	reviews, err := s.repo.Reviews(ctx, id)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*repository.ReviewView{}
	}
	return &HospitalDetail{Hospital: h, Reviews: reviews}, nil
}

func (in *HospitalInput) normalize() (*model.Hospital, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("医院名称不能为空")
	}
	if in.AverageCost < 0 {
		return nil, apperr.Validation("平均费用不能为负数")
	}
	if in.Status == "" {
		in.Status = model.InstitutionOpen
	}
	return &model.Hospital{
		Name:        in.Name,
		Level:       in.Level,
		Specialty:   in.Specialty,
		Address:     in.Address,
		Phone:       in.Phone,
		Description: in.Description,
		AverageCost: in.AverageCost,
		Status:      in.Status,
	}, nil
}

// Create 新增医院，名称唯一
func (s *HospitalService) Create(ctx context.Context, in HospitalInput) (uint64, error) {
	h, err := in.normalize()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.GetByName(ctx, h.Name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("医院名称已存在")
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return 0, err
	}
	return h.ID, nil
}

// Update 更新医院信息（评分由评价维护）
func (s *HospitalService) Update(ctx context.Context, id uint64, in HospitalInput) error {
	h, err := in.normalize()
	if err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, "医院不存在")
	}
	if h.Name != current.Name {
		other, err := s.repo.GetByName(ctx, h.Name)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict("医院名称已存在")
		}
	}
	h.ID = id
	return mapNotFound(s.repo.Update(ctx, h), "医院不存在")
}

// Delete 删除医院及其评价
func (s *HospitalService) Delete(ctx context.Context, id uint64) error {
	return mapNotFound(s.repo.Delete(ctx, id), "医院不存在")
}

// AddReview 写入评价并重新计算医院评分
func (s *HospitalService) AddReview(ctx context.Context, hospitalID, userID uint64, in ReviewInput) (*ReviewResult, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("评分必须在1-5之间")
	}
	if _, err := s.repo.GetByID(ctx, hospitalID); err != nil {
		return nil, mapNotFound(err, "医院不存在")
	}
	review := &model.HospitalReview{HospitalID: hospitalID, UserID: userID, Rating: in.Rating, Comment: in.Comment}
	if err := s.repo.AddReview(ctx, review); err != nil {
		return nil, err
	}
	rating, count, err := s.repo.RecomputeRating(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"hospital_id": hospitalID, "rating": rating, "count": count}).Info("医院评分已更新")
	return &ReviewResult{Rating: rating, RatingCount: count}, nil
}
