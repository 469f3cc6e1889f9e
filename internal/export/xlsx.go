// Package export 生成 xlsx 导出文件
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType xlsx 响应类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet 单个工作表
type Sheet struct {
	Name    string
	Headers []string
	Widths  []float64 // 列宽，可少于表头数量
	Rows    [][]interface{}
}

// Build 生成只包含一个工作表的 xlsx 文件
func Build(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("创建工作表失败: %w", err)
	}
	if sheet.Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("删除默认工作表失败: %w", err)
		}
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	for col, header := range sheet.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet.Name, cell, header); err != nil {
			return nil, fmt.Errorf("写入表头 %s 失败: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("设置表头样式失败: %w", err)
		}
	}

	for i, w := range sheet.Widths {
		if w <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet.Name, name, name, w); err != nil {
			return nil, fmt.Errorf("设置列宽失败: %w", err)
		}
	}

	// 数据从第 2 行开始
	for r, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return nil, fmt.Errorf("写入第 %d 行失败: %w", r+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("生成 xlsx 失败: %w", err)
	}
	return buf.Bytes(), nil
}
