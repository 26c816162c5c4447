package picklist

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/logger"
	"opa/cartsync/pkg/tabular"
)

// 代表行保留的非数量字段，按固定输出顺序分列在数量列前后
var (
	headCols = []string{model.ColWarehouse, model.ColProductCode, model.ColName, model.ColShelf}
	tailCols = []string{model.ColPickRemark, model.ColServiceRemark}
)

// Aggregate 按 SKU 汇总拣货单，原地改写行集
//   - 同一 SKU 的数量求和（非数值按 0 计）
//   - 其余字段取按 SKU 排序后该 SKU 的第一行
//   - 缺 SKU 或数量列时不做任何修改（宁可不猜）
//
// 返回是否发生了汇总
func Aggregate(ctx context.Context, sheet *tabular.Sheet, log logger.Logger) bool {
	skuCol := model.FindSKUColumn(sheet)
	qtyCol := model.FindQuantityColumn(sheet)
	if skuCol == "" || qtyCol == "" {
		log.Warnf(ctx, "[Aggregate] SKU or quantity column missing, skipped")
		return false
	}

	// 数量求和
	sums := make(map[string]decimal.Decimal)
	for _, row := range sheet.Rows {
		sku := strings.TrimSpace(row[skuCol])
		sums[sku] = sums[sku].Add(parseQuantity(row[qtyCol]))
	}

	// 按 SKU 排序后的首行作为代表行
	sorted := make([]tabular.Row, len(sheet.Rows))
	copy(sorted, sheet.Rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.TrimSpace(sorted[i][skuCol]) < strings.TrimSpace(sorted[j][skuCol])
	})

	outColumns := []string{model.ColSKU}
	for _, c := range headCols {
		if sheet.HasColumn(c) {
			outColumns = append(outColumns, c)
		}
	}
	outColumns = append(outColumns, model.ColQuantity)
	for _, c := range tailCols {
		if sheet.HasColumn(c) {
			outColumns = append(outColumns, c)
		}
	}

	outRows := make([]tabular.Row, 0, len(sums))
	seen := make(map[string]struct{}, len(sums))
	for _, row := range sorted {
		sku := strings.TrimSpace(row[skuCol])
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}

		out := make(tabular.Row, len(outColumns))
		out[model.ColSKU] = sku
		for _, c := range outColumns {
			if c == model.ColSKU || c == model.ColQuantity {
				continue
			}
			out[c] = row[c]
		}
		out[model.ColQuantity] = sums[sku].String()
		outRows = append(outRows, out)
	}

	sheet.Columns = outColumns
	sheet.Rows = outRows

	log.Infof(ctx, "[Aggregate] Collapsed to %d distinct SKUs", len(outRows))
	return true
}

// parseQuantity 宽松解析数量，无法解析按 0 计
func parseQuantity(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
