package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuild(t *testing.T) {
	raw, err := Build(Sheet{
		Name:    "DRG政策",
		Headers: []string{"DRG编码", "DRG名称", "支付标准"},
		Widths:  []float64{12, 20},
		Rows: [][]interface{}{
			{"MDC01", "颅脑损伤", 32500},
			{"MDC02", "神经系统疾病", 28800},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"DRG政策"}, f.GetSheetList())
	rows, err := f.GetRows("DRG政策")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"DRG编码", "DRG名称", "支付标准"}, rows[0])
	assert.Equal(t, "28800", rows[2][2])
}
