package service

import (
	"context"
	"fmt"
	"time"

	"MedGuard/internal/export"
	"MedGuard/internal/repository"
)

// ExportFile 导出文件
type ExportFile struct {
	Filename string
	Data     []byte
}

// Export 按当前筛选条件导出全部 DRG 政策
func (s *DRGService) Export(ctx context.Context, filter repository.DRGFilter) (*ExportFile, error) {
	rows, _, err := s.repo.List(ctx, filter, repository.Page{})
	if err != nil {
		return nil, err
	}
	sheet := export.Sheet{
		Name:    "DRG政策",
		Headers: []string{"DRG编码", "DRG名称", "包含诊断", "支付标准（元）", "生效日期", "状态"},
		Widths:  []float64{12, 20, 36, 16, 14, 8},
	}
	for _, p := range rows {
		status := "停用"
		if p.Status == 1 {
			status = "启用"
		}
		sheet.Rows = append(sheet.Rows, []interface{}{p.DRGCode, p.DRGName, p.Diagnosis, p.PaymentStandard, p.EffectiveDate, status})
	}
	data, err := export.Build(sheet)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: exportName("drg_policies"), Data: data}, nil
}

// Export 按当前筛选条件导出全部风险事件
func (s *RiskService) Export(ctx context.Context, filter repository.RiskFilter) (*ExportFile, error) {
	filter, err := s.NormalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, _, err := s.repo.List(ctx, filter, repository.Page{})
	if err != nil {
		return nil, err
	}
	sheet := export.Sheet{
		Name:    "风险事件",
		Headers: []string{"事件编号", "患者姓名", "医院", "风险类型", "风险等级", "处理状态", "事件时间"},
		Widths:  []float64{14, 12, 20, 12, 10, 10, 20},
	}
	for _, e := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			e.EventID, e.PatientName, e.Hospital, e.RiskType, e.RiskLevel, e.HandleStatus, formatTime(e.EventTime),
		})
	}
	data, err := export.Build(sheet)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: exportName("risk_events"), Data: data}, nil
}

func exportName(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102150405"))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

