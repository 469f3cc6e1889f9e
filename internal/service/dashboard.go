package service

import (
	"context"
	"time"

	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

const overviewWarningLimit = 10

// Metric 指标值与环比变化
type Metric struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// OverviewMetrics 看板核心指标
type OverviewMetrics struct {
	PaymentEfficiency        Metric `json:"paymentEfficiency"`
	RehabilitationEfficiency Metric `json:"rehabilitationEfficiency"`
	PayoutRate               Metric `json:"payoutRate"`
	SettlementTime           Metric `json:"settlementTime"`
}

// WarningItem 看板预警项
type WarningItem struct {
	ID       string    `json:"id"`
	Hospital string    `json:"hospital"`
	Type     string    `json:"type"`
	Amount   string    `json:"amount"`
	Time     time.Time `json:"time"`
	Status   string    `json:"status"`
}

// Overview 看板概览
type Overview struct {
	Metrics  OverviewMetrics      `json:"metrics"`
	Warnings []WarningItem        `json:"warnings"`
	Counters *repository.Counters `json:"counters"`
}

// FeeTrend 费用趋势
type FeeTrend struct {
	Months   []string `json:"months"`
	Total    []int64  `json:"total"`
	Medical  []int64  `json:"medical"`
	Personal []int64  `json:"personal"`
}

var overviewMetrics = OverviewMetrics{
	PaymentEfficiency:        Metric{Value: 30, Change: 5},
	RehabilitationEfficiency: Metric{Value: 25, Change: 0},
	PayoutRate:               Metric{Value: 11, Change: -8},
	SettlementTime:           Metric{Value: 0.7, Change: 0},
}

var feeTrends = map[string]FeeTrend{
	"month": {
		Months:   []string{"1月", "2月", "3月", "4月", "5月", "6月", "7月", "8月", "9月"},
		Total:    []int64{1200, 1350, 1500, 1420, 1600, 1750, 1820, 1900, 2050},
		Medical:  []int64{850, 950, 1050, 980, 1120, 1230, 1280, 1350, 1450},
		Personal: []int64{350, 400, 450, 440, 480, 520, 540, 550, 600},
	},
	"quarter": {
		Months:   []string{"Q1", "Q2", "Q3", "Q4"},
		Total:    []int64{4050, 4770, 5570, 6000},
		Medical:  []int64{2850, 3330, 3860, 4150},
		Personal: []int64{1200, 1440, 1710, 1850},
	},
	"year": {
		Months:   []string{"2021", "2022", "2023", "2024", "2025"},
		Total:    []int64{15000, 18000, 21000, 24000, 27000},
		Medical:  []int64{10500, 12600, 14700, 16800, 18900},
		Personal: []int64{4500, 5400, 6300, 7200, 8100},
	},
}

var demoRiskDistribution = []Distribution{
	{Value: 35, Name: "虚假住院"},
	{Value: 45, Name: "异常费用"},
	{Value: 15, Name: "过度医疗"},
	{Value: 5, Name: "其他欺诈"},
}

// DashboardService 数据看板
type DashboardService struct {
	warnings     repository.WarningRepository
	stats        repository.DashboardRepository
	demoFallback bool
	logger       *logrus.Logger
}

// NewDashboardService 创建 DashboardService
func NewDashboardService(warnings repository.WarningRepository, stats repository.DashboardRepository, demoFallback bool, logger *logrus.Logger) *DashboardService {
	return &DashboardService{warnings: warnings, stats: stats, demoFallback: demoFallback, logger: logger}
}

// Overview 固定指标 + 最近 10 条预警 + 实时计数
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	recent, err := s.warnings.Recent(ctx, overviewWarningLimit)
	if err != nil {
		return nil, err
	}
	items := make([]WarningItem, 0, len(recent))
	for _, w := range recent {
		items = append(items, WarningItem{
			ID:       w.WarningID,
			Hospital: w.Hospital,
			Type:     w.Type,
			Amount:   FormatYuan(w.Amount),
			Time:     w.WarningTime,
			Status:   w.Status,
		})
	}
	counters, err := s.stats.Counters(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{Metrics: overviewMetrics, Warnings: items, Counters: counters}, nil
}

// FeeTrend 费用趋势示例序列：month（默认）/ quarter，其余按年
func (s *DashboardService) FeeTrend(kind string) FeeTrend {
	switch kind {
	case "", "month":
		return feeTrends["month"]
	case "quarter":
		return feeTrends["quarter"]
	}
	return feeTrends["year"]
}

// RiskDistribution 预警类型分布
func (s *DashboardService) RiskDistribution(ctx context.Context) ([]Distribution, error) {
	counts, err := s.warnings.TypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 && s.demoFallback {
		return append([]Distribution(nil), demoRiskDistribution...), nil
	}
	return toDistribution(counts), nil
}
