package cart

import (
	"fmt"
	"strconv"
	"strings"

	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/errorutil"
	"opa/cartsync/pkg/tabular"
)

// Status 行状态
type Status string

const (
	StatusPending Status = ""        // 初始态（尚未处理）
	StatusFailed  Status = "FAILED"  // 终态：失败
	StatusDryRun  Status = "DRY_RUN" // 终态：配置禁用加购，未发请求
	StatusSuccess Status = "SUCCESS" // 终态：加购成功，重跑时跳过
)

// FailReason 失败原因（枚举承载，排序不解析备注文本）
type FailReason int

const (
	FailNone        FailReason = iota
	FailMissingSpec            // 规格标识为空
	FailStockPrep              // 备货专用行（人工处理）
	FailUnmapped               // 映射表未命中
	FailBadQuantity            // 数量缺失 / 非数值 / 非正
	FailNoOfferID              // 链接中解析不出商品 ID
	FailTransport              // 请求异常
	FailResponse               // 服务端返回失败
)

// 备货专用行的标记值（繁/简体），出现在链接 / 商品ID / 规格标识任一列
var stockPrepMarks = map[string]struct{}{
	"备货": {},
	"備貨": {},
}

// isStockPrepMark 判断是否为备货标记
func isStockPrepMark(s string) bool {
	_, ok := stockPrepMarks[strings.TrimSpace(s)]
	return ok
}

// Row 一条待加购行，从工作簿载入，处理中原地改写
type Row struct {
	Index int // 原始行号（排序稳定性依赖载入顺序，此字段仅供日志）

	SKU         string
	Quantity    string // 原始文本，校验时再解析
	Link        string
	ProductID   string
	VariantAttr string
	SkuID       string
	SpecID      string
	Supplier    string
	PickRemark  string

	Status Status
	Remark string
	Reason FailReason
}

// fail 记录失败终态
func (r *Row) fail(reason FailReason, remark string) {
	r.Status = StatusFailed
	r.Reason = reason
	r.Remark = remark
}

// bucket 排序桶：可处理的失败在前，成功次之，备货压底
func (r *Row) bucket() int {
	switch r.Status {
	case StatusFailed:
		switch r.Reason {
		case FailStockPrep:
			return 4
		case FailMissingSpec:
			return 0
		default:
			return 1
		}
	case StatusSuccess:
		return 3
	default:
		// DRY_RUN 以及其它未知状态
		return 2
	}
}

// LoadRows 从工作簿载入待加购行
// 商品链接 / 规格标识 / 数量 三列缺任何一列都属于环境错误
func LoadRows(sheet *tabular.Sheet) ([]*Row, error) {
	linkCol := model.FindLinkColumn(sheet)
	if linkCol == "" {
		return nil, errorutil.Environment("无法找到列: %s", model.ColLink)
	}
	specCol := model.FindSpecIDColumn(sheet)
	if specCol == "" {
		return nil, errorutil.Environment("无法找到规格标识列（表头需含 spec 和 id）")
	}
	qtyCol := model.FindQuantityColumn(sheet)
	if qtyCol == "" {
		return nil, errorutil.Environment("无法找到列: %s", model.ColQuantity)
	}

	rows := make([]*Row, 0, len(sheet.Rows))
	for i, raw := range sheet.Rows {
		rows = append(rows, &Row{
			Index:       i,
			SKU:         strings.TrimSpace(raw[model.ColSKU]),
			Quantity:    raw[qtyCol],
			Link:        strings.TrimSpace(raw[linkCol]),
			ProductID:   strings.TrimSpace(raw[model.ColProductID]),
			VariantAttr: strings.TrimSpace(raw[model.ColVariantAttr]),
			SkuID:       strings.TrimSpace(raw[model.ColSkuID]),
			SpecID:      strings.TrimSpace(raw[specCol]),
			Supplier:    strings.TrimSpace(raw[model.ColSupplier]),
			PickRemark:  strings.TrimSpace(raw[model.ColPickRemark]),
			Status:      Status(strings.TrimSpace(raw[model.ColStatus])),
			Remark:      strings.TrimSpace(raw[model.ColRemark]),
		})
	}
	return rows, nil
}

// resultColumns 结果表固定列序
var resultColumns = []string{
	model.ColSKU,
	model.ColQuantity,
	model.ColLink,
	model.ColProductID,
	model.ColVariantAttr,
	model.ColSkuID,
	model.ColSpecID,
	model.ColSupplier,
	model.ColPickRemark,
	model.ColStatus,
	model.ColRemark,
}

// ResultSheet 将处理完的行转为结果工作表
// 只保留关键信息列，仓库 / 名称 / 货架位等拣货字段在此丢弃
func ResultSheet(rows []*Row) *tabular.Sheet {
	out := &tabular.Sheet{
		Columns: append([]string(nil), resultColumns...),
		Rows:    make([]tabular.Row, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, tabular.Row{
			model.ColSKU:         r.SKU,
			model.ColQuantity:    r.Quantity,
			model.ColLink:        r.Link,
			model.ColProductID:   r.ProductID,
			model.ColVariantAttr: r.VariantAttr,
			model.ColSkuID:       r.SkuID,
			model.ColSpecID:      r.SpecID,
			model.ColSupplier:    r.Supplier,
			model.ColPickRemark:  r.PickRemark,
			model.ColStatus:      string(r.Status),
			model.ColRemark:      r.Remark,
		})
	}
	return out
}

// parseQuantity 严格解析数量：必须是正整数（容忍 "3.0" 这类导出格式）
func parseQuantity(v string) (int, error) {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return 0, fmt.Errorf("数量为空")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("数量不是数值: %s", s)
	}
	q := int(f)
	if q <= 0 {
		return 0, fmt.Errorf("数量必须为正整数")
	}
	return q, nil
}
