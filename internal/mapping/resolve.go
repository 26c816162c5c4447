package mapping

import (
	"context"
	"strings"

	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/errorutil"
	"opa/cartsync/pkg/logger"
	"opa/cartsync/pkg/tabular"
)

// UnmappedLink 映射缺失哨兵：写入商品链接列，保证未映射行在产物中可见
// 状态机按该常量精确匹配，不解析自由文本
const UnmappedLink = "NO MAPPING SKU"

// 映射表主键列的几种写法（繁/简体混用的历史遗留）
var keyColumnAliases = []string{"商品選項貨號", "商品选項貨號", "商品选项货号"}

// Table 参考映射表：规范化 SKU → 采购字段
type Table struct {
	records map[string]tabular.Row
}

// LoadTable 读取映射工作簿并归一化
// 找不到文件或主键列属于环境错误（启动即终止）
func LoadTable(path string) (*Table, error) {
	sheet, err := tabular.Read(path)
	if err != nil {
		return nil, errorutil.Environment("加载映射表失败: %v", err)
	}

	keyCol := ""
	for _, alias := range keyColumnAliases {
		if sheet.HasColumn(alias) {
			keyCol = alias
			break
		}
	}
	if keyCol == "" {
		return nil, errorutil.Environment("映射表中未找到主键列（商品選項貨號）")
	}

	records := make(map[string]tabular.Row, len(sheet.Rows))
	for _, row := range sheet.Rows {
		sku := NormalizeSKU(row[keyCol])
		if sku == "" {
			continue
		}
		rec := make(tabular.Row, len(model.MappedFields))
		for _, field := range model.MappedFields {
			rec[field] = strings.TrimSpace(row[field])
		}
		// 同一 SKU 重复出现时保留首条
		if _, ok := records[sku]; !ok {
			records[sku] = rec
		}
	}

	return &Table{records: records}, nil
}

// Lookup 查询规范化 SKU 对应的映射记录
func (t *Table) Lookup(sku string) (tabular.Row, bool) {
	rec, ok := t.records[NormalizeSKU(sku)]
	return rec, ok
}

// Len 映射记录条数
func (t *Table) Len() int {
	return len(t.records)
}

// NormalizeSKU 连接键规范化：trim + 统一大写
func NormalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NeedsResolution 判断工作簿是否需要做映射
// 已带 商品链接 + 规格标识列的表视为已整理好的货源格式，跳过映射
func NeedsResolution(sheet *tabular.Sheet) bool {
	hasLink := model.FindLinkColumn(sheet) != ""
	hasSpec := model.FindSpecIDColumn(sheet) != ""
	return !(hasLink && hasSpec)
}

// Result 映射结果
type Result struct {
	UnmappedSKUs []string // 未找到映射的 SKU（去重）
}

// Resolve 按映射表回填采购字段，原地改写行集
//   - 连接键两侧都做规范化（trim + 大写）
//   - 仅当映射值非空才覆盖行内原值
//   - 映射后商品链接仍为空的行写入 UnmappedLink 哨兵并上报
func Resolve(ctx context.Context, sheet *tabular.Sheet, table *Table, log logger.Logger) (*Result, error) {
	skuCol := model.FindSKUColumn(sheet)
	if skuCol == "" {
		return nil, errorutil.Environment("当前工作簿没有 SKU 列，无法按映射表回填")
	}

	// 补齐缺失的采购字段列
	for _, field := range model.MappedFields {
		if !sheet.HasColumn(field) {
			sheet.Columns = append(sheet.Columns, field)
		}
	}

	unmapped := make([]string, 0)
	seenUnmapped := make(map[string]struct{})

	for _, row := range sheet.Rows {
		sku := NormalizeSKU(row[skuCol])
		row[skuCol] = sku

		if rec, ok := table.Lookup(sku); ok {
			for _, field := range model.MappedFields {
				if mapped := rec[field]; mapped != "" {
					row[field] = mapped
				} else {
					row[field] = strings.TrimSpace(row[field])
				}
			}
		} else {
			for _, field := range model.MappedFields {
				row[field] = strings.TrimSpace(row[field])
			}
		}

		if strings.TrimSpace(row[model.ColLink]) == "" {
			row[model.ColLink] = UnmappedLink
			if _, ok := seenUnmapped[sku]; !ok && sku != "" {
				seenUnmapped[sku] = struct{}{}
				unmapped = append(unmapped, sku)
			}
		}
	}

	if len(unmapped) > 0 {
		log.Warnf(ctx, "[Mapping] %d SKUs have no mapping record", len(unmapped))
		for _, sku := range unmapped {
			log.Warnf(ctx, "[Mapping] Unmapped SKU: %s", sku)
		}
	} else {
		log.Infof(ctx, "[Mapping] All %d rows resolved", len(sheet.Rows))
	}

	return &Result{UnmappedSKUs: unmapped}, nil
}
