package picklist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/logger"
	"opa/cartsync/pkg/tabular"
)

func row(sku, qty, warehouse string) tabular.Row {
	return tabular.Row{
		model.ColSKU:       sku,
		model.ColQuantity:  qty,
		model.ColWarehouse: warehouse,
	}
}

func TestAggregateSumsPerSKU(t *testing.T) {
	sheet := &tabular.Sheet{
		Columns: []string{model.ColSKU, model.ColQuantity, model.ColWarehouse},
		Rows: []tabular.Row{
			row("B-1", "2", "华东仓"),
			row("A-1", "1", "华南仓"),
			row("B-1", "3", "华北仓"),
			row("A-1", "0.5", "华南仓"),
		},
	}

	ok := Aggregate(context.Background(), sheet, logger.Nop{})
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	// 按 SKU 排序，数量精确求和（无浮点误差）
	assert.Equal(t, "A-1", sheet.Rows[0][model.ColSKU])
	assert.Equal(t, "1.5", sheet.Rows[0][model.ColQuantity])
	assert.Equal(t, "B-1", sheet.Rows[1][model.ColSKU])
	assert.Equal(t, "5", sheet.Rows[1][model.ColQuantity])
}

func TestAggregateRepresentativeRow(t *testing.T) {
	// 非数量字段取排序后的首行
	sheet := &tabular.Sheet{
		Columns: []string{model.ColSKU, model.ColQuantity, model.ColWarehouse},
		Rows: []tabular.Row{
			row("A-1", "1", "第二仓"),
			row("A-1", "1", "第一仓"),
		},
	}

	require.True(t, Aggregate(context.Background(), sheet, logger.Nop{}))
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "第二仓", sheet.Rows[0][model.ColWarehouse], "稳定排序保持原相对顺序")
}

func TestAggregateBadQuantityCountsAsZero(t *testing.T) {
	sheet := &tabular.Sheet{
		Columns: []string{model.ColSKU, model.ColQuantity},
		Rows: []tabular.Row{
			{model.ColSKU: "A-1", model.ColQuantity: "abc"},
			{model.ColSKU: "A-1", model.ColQuantity: "2"},
		},
	}

	require.True(t, Aggregate(context.Background(), sheet, logger.Nop{}))
	assert.Equal(t, "2", sheet.Rows[0][model.ColQuantity])
}

func TestAggregateMissingColumnsIsNoop(t *testing.T) {
	sheet := &tabular.Sheet{
		Columns: []string{"别的列"},
		Rows:    []tabular.Row{{"别的列": "x"}},
	}

	assert.False(t, Aggregate(context.Background(), sheet, logger.Nop{}))
	assert.Equal(t, []string{"别的列"}, sheet.Columns)
	assert.Len(t, sheet.Rows, 1)
}

func TestAggregateColumnOrder(t *testing.T) {
	sheet := &tabular.Sheet{
		Columns: []string{model.ColPickRemark, model.ColQuantity, model.ColSKU, model.ColWarehouse},
		Rows:    []tabular.Row{row("A-1", "1", "仓")},
	}
	sheet.Rows[0][model.ColPickRemark] = "急"

	require.True(t, Aggregate(context.Background(), sheet, logger.Nop{}))
	// 输出列序固定：SKU、在场的头部字段、数量、在场的尾部字段
	assert.Equal(t, []string{model.ColSKU, model.ColWarehouse, model.ColQuantity, model.ColPickRemark}, sheet.Columns)
}
