package model

import (
	"strings"

	"opa/cartsync/pkg/tabular"
)

// 拣货单 / 映射表 / 加购结果表的列名，与平台导出的表头保持一致
const (
	ColSKU           = "SKU"
	ColQuantity      = "数量"
	ColWarehouse     = "仓库"
	ColProductCode   = "商品编码"
	ColName          = "名称"
	ColShelf         = "货架位"
	ColPickRemark    = "拣货备注"
	ColServiceRemark = "客服备注"
	ColLink          = "商品链接"
	ColProductID     = "商品ID"
	ColVariantAttr   = "属性SKU"
	ColSkuID         = "SKU ID"
	ColSpecID        = "Spec ID"
	ColSupplier      = "主供应商"
	ColShopName      = "店铺名称"
	ColStatus        = "状态"
	ColRemark        = "备注"
)

// MappedFields 映射表向拣货行回填的字段，按输出顺序排列
var MappedFields = []string{
	ColLink,
	ColProductID,
	ColVariantAttr,
	ColSkuID,
	ColSpecID,
	ColSupplier,
}

// FindSKUColumn 查找 SKU 列（表头 trim 后精确匹配）
func FindSKUColumn(s *tabular.Sheet) string {
	return s.FindColumn(func(c string) bool {
		return strings.TrimSpace(c) == ColSKU
	})
}

// FindQuantityColumn 查找数量列：先精确匹配，再退化为包含匹配
func FindQuantityColumn(s *tabular.Sheet) string {
	if c := s.FindColumn(func(c string) bool {
		return strings.TrimSpace(c) == ColQuantity
	}); c != "" {
		return c
	}
	return s.FindColumn(func(c string) bool {
		return strings.Contains(c, ColQuantity)
	})
}

// FindSpecIDColumn 查找规格标识列
// 表头去空格小写后需同时含 "spec" 与 "id"，兼容 "Spec ID" / "SpecId" 等写法
func FindSpecIDColumn(s *tabular.Sheet) string {
	return s.FindColumn(func(c string) bool {
		name := strings.ToLower(strings.ReplaceAll(c, " ", ""))
		return strings.Contains(name, "spec") && strings.Contains(name, "id")
	})
}

// FindLinkColumn 查找商品链接列（精确匹配）
func FindLinkColumn(s *tabular.Sheet) string {
	return s.FindColumn(func(c string) bool {
		return strings.TrimSpace(c) == ColLink
	})
}
