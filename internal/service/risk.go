package service

import (
	"context"
	"strings"

	"MedGuard/internal/apperr"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

// RiskInput 新增/修改风险事件参数
type RiskInput struct {
	EventID      string `json:"eventId"`
	PatientName  string `json:"patientName"`
	Hospital     string `json:"hospital"`
	RiskType     string `json:"riskType"`
	RiskLevel    string `json:"riskLevel"` // high/medium/low 或 高/中/低
	HandleStatus string `json:"handleStatus"`
}

// RiskOverview 风控模型概览（固定指标）
type RiskOverview struct {
	Recall        int `json:"recall"`
	FalsePositive int `json:"falsePositive"`
	Success       int `json:"success"`
}

// RiskEventList 风险事件列表 + 概览
type RiskEventList struct {
	List     []*model.RiskEvent `json:"list"`
	Total    int64              `json:"total"`
	Page     int                `json:"page,omitempty"`
	PageSize int                `json:"pageSize,omitempty"`
	Overview RiskOverview       `json:"overview"`
}

// LevelDistribution 风险等级分布
type LevelDistribution struct {
	Levels []string `json:"levels"`
	Counts []int64  `json:"counts"`
}

var riskOverview = RiskOverview{Recall: 92, FalsePositive: 12, Success: 88}

var demoRiskTypes = []Distribution{
	{Value: 40, Name: "虚假住院"},
	{Value: 30, Name: "过度医疗"},
	{Value: 20, Name: "重复收费"},
	{Value: 10, Name: "其他"},
}

var demoRiskLevels = LevelDistribution{
	Levels: []string{"高风险", "中风险", "低风险"},
	Counts: []int64{120, 350, 580},
}

// RiskService 风险事件
type RiskService struct {
	repo         repository.RiskRepository
	demoFallback bool
	logger       *logrus.Logger
}

// NewRiskService 创建 RiskService
func NewRiskService(repo repository.RiskRepository, demoFallback bool, logger *logrus.Logger) *RiskService {
	return &RiskService{repo: repo, demoFallback: demoFallback, logger: logger}
}

// NormalizeFilter 风险等级参数转为存储值，非法值返回校验错误
func (s *RiskService) NormalizeFilter(filter repository.RiskFilter) (repository.RiskFilter, error) {
	if filter.Level == "" {
		return filter, nil
	}
	level := model.NormalizeRiskLevel(filter.Level)
	if level == "" {
		return filter, apperr.Validation("风险等级只能为 high/medium/low")
	}
	filter.Level = level
	return filter, nil
}

// List 分页查询，附带风控概览
func (s *RiskService) List(ctx context.Context, filter repository.RiskFilter, page repository.Page) (*RiskEventList, error) {
	filter, err := s.NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	res := newListResult(rows, total, page)
	return &RiskEventList{List: res.List, Total: res.Total, Page: res.Page, PageSize: res.PageSize, Overview: riskOverview}, nil
}

// Get 详情
func (s *RiskService) Get(ctx context.Context, id uint64) (*model.RiskEvent, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "风险事件不存在")
	}
	return e, nil
}

func (in *RiskInput) normalize() (*model.RiskEvent, error) {
	in.EventID = strings.TrimSpace(in.EventID)
	if in.EventID == "" {
		return nil, apperr.Validation("事件编号不能为空")
	}
	level := model.NormalizeRiskLevel(in.RiskLevel)
	if level == "" {
		return nil, apperr.Validation("风险等级只能为 高/中/低")
	}
	if in.HandleStatus == "" {
		in.HandleStatus = model.HandlePending
	}
	return &model.RiskEvent{
		EventID:      in.EventID,
		PatientName:  in.PatientName,
		Hospital:     in.Hospital,
		RiskType:     in.RiskType,
		RiskLevel:    level,
		HandleStatus: in.HandleStatus,
	}, nil
}

// Create 新增，事件编号唯一
func (s *RiskService) Create(ctx context.Context, in RiskInput) (uint64, error) {
	e, err := in.normalize()
	if err != nil {
		return 0, err
	}
	existing, err := s.repo.GetByEventID(ctx, e.EventID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("事件编号已存在")
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Update 整行更新
func (s *RiskService) Update(ctx context.Context, id uint64, in RiskInput) error {
	e, err := in.normalize()
	if err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, "风险事件不存在")
	}
	if e.EventID != current.EventID {
		other, err := s.repo.GetByEventID(ctx, e.EventID)
		if err != nil {
			return err
		}
		if other != nil && other.ID != id {
			return apperr.Conflict("事件编号已存在")
		}
	}
	e.ID = id
	return mapNotFound(s.repo.Update(ctx, e), "风险事件不存在")
}

// Delete 删除
func (s *RiskService) Delete(ctx context.Context, id uint64) error {
	return mapNotFound(s.repo.Delete(ctx, id), "风险事件不存在")
}

// TypeDistribution 风险类型分布
func (s *RiskService) TypeDistribution(ctx context.Context) ([]Distribution, error) {
	counts, err := s.repo.TypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 && s.demoFallback {
		return append([]Distribution(nil), demoRiskTypes...), nil
	}
	return toDistribution(counts), nil
}

// LevelDistribution 风险等级分布，顺序 高、中、低
func (s *RiskService) LevelDistribution(ctx context.Context) (*LevelDistribution, error) {
	counts, err := s.repo.LevelCounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 && s.demoFallback {
		demo := demoRiskLevels
		return &demo, nil
	}
	out := &LevelDistribution{Levels: make([]string, 0, len(counts)), Counts: make([]int64, 0, len(counts))}
	for _, c := range counts {
		out.Levels = append(out.Levels, c.Name)
		out.Counts = append(out.Counts, c.Count)
	}
	return out, nil
}

func toDistribution(counts []repository.NameCount) []Distribution {
	out := make([]Distribution, 0, len(counts))
	for _, c := range counts {
		out = append(out, Distribution{Value: c.Count, Name: c.Name})
	}
	return out
}
