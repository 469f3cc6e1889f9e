package service

import (
	"context"
	"strings"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

// WarningInput 新增/修改预警参数
type WarningInput struct {
	WarningID string  `json:"warningId"`
	Hospital  string  `json:"hospital"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// WarningService 费用异常预警
type WarningService struct {
	repo   repository.WarningRepository
	logger *logrus.Logger
}

// NewWarningService 创建 WarningService
func NewWarningService(repo repository.WarningRepository, logger *logrus.Logger) *WarningService {
	return &WarningService{repo: repo, logger: logger}
}

// List 分页查询
func (s *WarningService) List(ctx context.Context, filter repository.WarningFilter, page repository.Page) (*ListResult[*model.Warning], error) {
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return newListResult(rows, total, page), nil
}

// Get 详情
func (s *WarningService) Get(ctx context.Context, id uint64) (*model.Warning, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "预警不存在")
	}
	return w, nil
}

func (in *WarningInput) normalize() (*model.Warning, error) {
	in.WarningID = strings.TrimSpace(in.WarningID)
	if in.WarningID == "" {
		return nil, apperr.Validation("预警编号不能为空")
	}
	if blank(in.Hospital) || blank(in.Type) {
		return nil, apperr.Validation("医院和预警类型不能为空")
	}
	if in.Amount < 0 {
		return nil, apperr.Validation("金额不能为负数")
	}
	if in.Status == "" {
		in.Status = model.HandlePending
	}
	return &model.Warning{WarningID: in.WarningID, Hospital: in.Hospital, Type: in.Type, Amount: in.Amount, Status: in.Status}, nil
}

// Create 新增，预警编号唯一
func (s *WarningService) Create(ctx context.Context, in WarningInput) (uint64, error) {
	w, err := in.normalize()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.GetByWarningID(ctx, w.WarningID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("预警编号已存在")
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return 0, err
	}
	return w.ID, nil
}

// Update 整行更新
func (s *WarningService) Update(ctx context.Context, id uint64, in WarningInput) error {
	w, err := in.normalize()
	if err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, "预警不存在")
	}
	if w.WarningID != current.WarningID {
		other, err := s.repo.GetByWarningID(ctx, w.WarningID)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict("预警编号已存在")
		}
	}
	w.ID = id
	return mapNotFound(s.repo.Update(ctx, w), "预警不存在")
}

// Delete 删除
func (s *WarningService) Delete(ctx context.Context, id uint64) error {
	return mapNotFound(s.repo.Delete(ctx, id), "预警不存在")
}
