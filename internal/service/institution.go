package service

import (
	"context"
	"strings"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

// InstitutionInput 新增/修改康复机构参数
type InstitutionInput struct {
	Name        string   `json:"name"`
	Level       string   `json:"level"`
	BedCount    int      `json:"bedCount"`
	Specialty   string   `json:"specialty"`
	Status      string   `json:"status"`
	Rating      *float64 `json:"rating"`
	PriceLevel  string   `json:"priceLevel"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Description string   `json:"description"`
}

// InstitutionService 康复机构（管理端维护，用户端作为转院目标医院浏览）
type InstitutionService struct {
	repo   repository.InstitutionRepository
	logger *logrus.Logger
}

// NewInstitutionService 创建 InstitutionService
func NewInstitutionService(repo repository.InstitutionRepository, logger *logrus.Logger) *InstitutionService {
	return &InstitutionService{repo: repo, logger: logger}
}

// List 管理端分页列表
func (s *InstitutionService) List(ctx context.Context, filter repository.InstitutionFilter, page repository.Page) (*ListResult[*model.RehabInstitution], error) {
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return newListResult(rows, total, page), nil
}

// ListOpen 用户端医院列表
func (s *InstitutionService) ListOpen(ctx context.Context, filter repository.InstitutionFilter) ([]*model.RehabInstitution, error) {
	if filter.PriceLevel != "" && !model.ValidPriceLevel(filter.PriceLevel) {
		return nil, apperr.Validation("价格档位只能为 较低/中等/较高")
	}
	rows, err := s.repo.ListOpen(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*model.RehabInstitution{}
	}
	return rows, nil
}

// Get 管理端详情
func (s *InstitutionService) Get(ctx context.Context, id uint64) (*model.RehabInstitution, error) {
	inst, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "机构不存在")
	}
	return inst, nil
}

// GetOpen 用户端详情，仅营业中
func (s *InstitutionService) GetOpen(ctx context.Context, id uint64) (*model.RehabInstitution, error) {
	inst, err := s.repo.GetOpenByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "医院不存在")
	}
	return inst, nil
}

func (in *InstitutionInput) normalize() (*model.RehabInstitution, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("机构名称不能为空")
	}
	if in.BedCount < 0 {
		return nil, apperr.Validation("床位数不能为负数")
	}
	var rating float64
	if in.Rating != nil {
		rating = *in.Rating
	}
	if rating < 0 || rating > 5 {
		return nil, apperr.Validation("评分必须在0-5之间")
	}
	if in.PriceLevel == "" {
		in.PriceLevel = model.PriceMedium
	}
	if !model.ValidPriceLevel(in.PriceLevel) {
		return nil, apperr.Validation("价格档位只能为 较低/中等/较高")
	}
	if in.Status == "" {
		in.Status = model.InstitutionOpen
	}
	return &model.RehabInstitution{
		Name:        in.Name,
		Level:       in.Level,
		BedCount:    in.BedCount,
		Specialty:   in.Specialty,
		Status:      in.Status,
		Rating:      rating,
		PriceLevel:  in.PriceLevel,
		Address:     in.Address,
		Phone:       in.Phone,
		Description: in.Description,
	}, nil
}

// Create 新增，名称唯一
func (s *InstitutionService) Create(ctx context.Context, in InstitutionInput) (uint64, error) {
	inst, err := in.normalize()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.GetByName(ctx, inst.Name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("机构名称已存在")
	}
	if err := s.repo.Create(ctx, inst); err != nil {
		return 0, err
	}
	return inst.ID, nil
}

// Update 整行更新
func (s *InstitutionService) Update(ctx context.Context, id uint64, in InstitutionInput) error {
	inst, err := in.normalize()
	if err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, "机构不存在")
	}
	if inst.Name != current.Name {
		other, err := s.repo.GetByName(ctx, inst.Name)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict("机构名称已存在")
		}
	}
	inst.ID = id
	return mapNotFound(s.repo.Update(ctx, inst), "机构不存在")
}

// Delete 删除
func (s *InstitutionService) Delete(ctx context.Context, id uint64) error {
	return mapNotFound(s.repo.Delete(ctx, id), "机构不存在")
}
