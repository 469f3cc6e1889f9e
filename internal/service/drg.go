package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

// DRGInput 新增/修改 DRG 政策参数
type DRGInput struct {
	DRGCode         string  `json:"drgCode"`
	DRGName         string  `json:"drgName"`
	Diagnosis       string  `json:"diagnosis"`
	PaymentStandard float64 `json:"paymentStandard"`
	EffectiveDate   string  `json:"effectiveDate"`
	Status          *int    `json:"status"`
}

// DRGView DRG 政策返回结构
type DRGView struct {
	ID                  uint64  `json:"id"`
	DRGCode             string  `json:"drgCode"`
	DRGName             string  `json:"drgName"`
	Diagnosis           string  `json:"diagnosis"`
	PaymentStandard     float64 `json:"paymentStandard"`
	PaymentStandardText string  `json:"paymentStandardText"`
	EffectiveDate       string  `json:"effectiveDate"`
	Status              string  `json:"status"`
}

// DRGStatistics 按编码统计
type DRGStatistics struct {
	Codes  []string `json:"codes"`
	Counts []int64  `json:"counts"`
}

// DRGService DRG 支付政策
type DRGService struct {
	repo         repository.DRGRepository
	demoFallback bool
	logger       *logrus.Logger
}

// NewDRGService 创建 DRGService
func NewDRGService(repo repository.DRGRepository, demoFallback bool, logger *logrus.Logger) *DRGService {
	return &DRGService{repo: repo, demoFallback: demoFallback, logger: logger}
}

func toDRGView(p *model.DRGPolicy) *DRGView {
	return &DRGView{
		ID:                  p.ID,
		DRGCode:             p.DRGCode,
		DRGName:             p.DRGName,
		Diagnosis:           p.Diagnosis,
		PaymentStandard:     p.PaymentStandard,
		PaymentStandardText: FormatYuan(p.PaymentStandard),
		EffectiveDate:       p.EffectiveDate,
		Status:              strconv.Itoa(p.Status),
	}
}

// List 分页查询
func (s *DRGService) List(ctx context.Context, filter repository.DRGFilter, page repository.Page) (*ListResult[*DRGView], error) {
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	views := make([]*DRGView, 0, len(rows))
	for _, p := range rows {
		views = append(views, toDRGView(p))
	}
	return newListResult(views, total, page), nil
}

// Get 详情
func (s *DRGService) Get(ctx context.Context, id uint64) (*DRGView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "记录不存在")
	}
	return toDRGView(p), nil
}

func (in *DRGInput) normalize() (*model.DRGPolicy, error) {
	in.DRGCode = strings.TrimSpace(in.DRGCode)
	in.DRGName = strings.TrimSpace(in.DRGName)
	if in.DRGCode == "" || in.DRGName == "" {
		return nil, apperr.Validation("DRG编码和名称不能为空")
	}
	if in.PaymentStandard < 0 {
		return nil, apperr.Validation("支付标准不能为负数")
	}
	if in.EffectiveDate != "" {
		if _, err := time.Parse("2006-01-02", in.EffectiveDate); err != nil {
			return nil, apperr.Validation("生效日期格式应为 YYYY-MM-DD")
		}
	}
	status := 1
	if in.Status != nil {
		status = *in.Status
	}
	if status != 0 && status != 1 {
		return nil, apperr.Validation("状态只能为 0 或 1")
	}
	return &model.DRGPolicy{
		DRGCode:         in.DRGCode,
		DRGName:         in.DRGName,
		Diagnosis:       in.Diagnosis,
		PaymentStandard: in.PaymentStandard,
		EffectiveDate:   in.EffectiveDate,
		Status:          status,
	}, nil
}

// Create 新增，编码唯一
func (s *DRGService) Create(ctx context.Context, in DRGInput) (uint64, error) {
	p, err := in.normalize()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.GetByCode(ctx, p.DRGCode)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("DRG编码已存在")
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

// Update 整行更新，编码变化时重新校验唯一性
func (s *DRGService) Update(ctx context.Context, id uint64, in DRGInput) error {
	p, err := in.normalize()
	if err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, "记录不存在")
	}
	if p.DRGCode != current.DRGCode {
		other, err := s.repo.GetByCode(ctx, p.DRGCode)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict("DRG编码已存在")
		}
	}
	p.ID = id
	return mapNotFound(s.repo.Update(ctx, p), "记录不存在")
}

// Delete 删除
func (s *DRGService) Delete(ctx context.Context, id uint64) error {
	return mapNotFound(s.repo.Delete(ctx, id), "记录不存在")
}

var demoDRGStatistics = DRGStatistics{
	Codes:  []string{"MDC01", "MDC02", "MDC03", "MDC04", "MDC05", "MDC06", "MDC07", "MDC08"},
	Counts: []int64{1200, 1500, 1800, 2100, 1600, 1300, 900, 700},
}

// Statistics 按编码统计；无数据时按配置返回示例数据
func (s *DRGService) Statistics(ctx context.Context) (*DRGStatistics, error) {
	counts, err := s.repo.CodeCounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 && s.demoFallback {
		demo := demoDRGStatistics
		return &demo, nil
	}
	out := &DRGStatistics{Codes: make([]string, 0, len(counts)), Counts: make([]int64, 0, len(counts))}
	for _, c := range counts {
		out.Codes = append(out.Codes, c.Name)
		out.Counts = append(out.Counts, c.Count)
	}
	return out, nil
}
