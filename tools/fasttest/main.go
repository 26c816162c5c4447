package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"opa/cartsync/internal/cart"
	"opa/cartsync/internal/mapping"
	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/logger"
	"opa/cartsync/pkg/tabular"
)

var (
	mappingPath = flag.String("mapping", "", "映射表路径（留空用内置样例数据）")
)

// FastTest 离线快速测试工具
// 不触网：喂入样例行，走 映射回填 → 状态机（非 live） 全流程，
// 打印每行终态，用于改动后快速确认规则顺序没有被破坏
func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - CartSync 离线快速测试工具")
	fmt.Println("========================================")

	sheet := sampleSheet()
	fmt.Printf("✅ Loaded %d sample rows\n", len(sheet.Rows))

	ctx := context.Background()
	log := logger.Nop{}

	// 1. 映射回填
	table, err := loadTable(*mappingPath)
	if err != nil {
		fmt.Printf("❌ Failed to load mapping table: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Mapping table ready: %d records\n", table.Len())

	if _, err := mapping.Resolve(ctx, sheet, table, log); err != nil {
		fmt.Printf("❌ Resolve failed: %v\n", err)
		os.Exit(1)
	}

	// 2. 状态机（live=false，任何可提交行都记 DRY_RUN）
	rows, err := cart.LoadRows(sheet)
	if err != nil {
		fmt.Printf("❌ LoadRows failed: %v\n", err)
		os.Exit(1)
	}

	submitter := cart.NewSubmitter(nil, false, cart.PurchaseWholesale,
		time.Millisecond, time.Millisecond, log)
	stats := submitter.Run(ctx, rows)
	cart.SortRows(rows)

	fmt.Println("----------------------------------------")
	for _, r := range rows {
		fmt.Printf("  [%s] sku=%-12s link=%-40s remark=%s\n", r.Status, r.SKU, r.Link, r.Remark)
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("✅ Done: success=%d failed=%d dry_run=%d skipped=%d\n",
		stats.Success, stats.Failed, stats.DryRun, stats.Skipped)
}

// loadTable 读取映射表；未指定路径时写出内置样例再读回，保证走同一条代码路径
func loadTable(path string) (*mapping.Table, error) {
	if path != "" {
		return mapping.LoadTable(path)
	}

	tmp, err := os.CreateTemp("", "fasttest_mapping_*.xlsx")
	if err != nil {
		return nil, err
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := tabular.Write(tmp.Name(), sampleMapping()); err != nil {
		return nil, err
	}
	return mapping.LoadTable(tmp.Name())
}

// sampleSheet 覆盖主要分支的样例拣货单：
// 正常行 / 未映射行 / 备货行 / 坏数量行 / 历史成功行
func sampleSheet() *tabular.Sheet {
	cols := []string{model.ColSKU, model.ColQuantity, model.ColStatus, model.ColRemark}
	mk := func(sku, qty, status string) tabular.Row {
		return tabular.Row{
			model.ColSKU:      sku,
			model.ColQuantity: qty,
			model.ColStatus:   status,
			model.ColRemark:   "",
		}
	}
	return &tabular.Sheet{
		Columns: cols,
		Rows: []tabular.Row{
			mk("abc-001", "2", ""),
			mk("ABC-001", "3", ""),
			mk("GHOST-9", "1", ""),
			mk("PREP-1", "5", ""),
			mk("ABC-002", "", ""),
			mk("ABC-003", "1", "SUCCESS"),
		},
	}
}

// sampleMapping 与样例拣货单配套的映射记录
func sampleMapping() *tabular.Sheet {
	cols := append([]string{"商品選項貨號"}, model.MappedFields...)
	return &tabular.Sheet{
		Columns: cols,
		Rows: []tabular.Row{
			{
				"商品選項貨號":          "ABC-001",
				model.ColLink:      "https://detail.1688.com/offer/7788990011.html",
				model.ColProductID: "7788990011",
				model.ColSpecID:    "spec-aa11",
				model.ColSupplier:  "样例供应商",
			},
			{
				"商品選項貨號":          "PREP-1",
				model.ColLink:      "备货",
				model.ColProductID: "",
				model.ColSpecID:    "",
			},
			{
				"商品選項貨號":          "ABC-002",
				model.ColLink:      "https://detail.1688.com/offer/7788990022.html",
				model.ColProductID: "7788990022",
				model.ColSpecID:    "spec-bb22",
			},
			{
				"商品選項貨號":          "ABC-003",
				model.ColLink:      "https://detail.1688.com/offer/7788990033.html",
				model.ColProductID: "7788990033",
				model.ColSpecID:    "spec-cc33",
			},
		},
	}
}
