package pipeline

import (
	"context"
	"strings"

	"opa/cartsync/internal/dxm"
	"opa/cartsync/internal/picklist"
	"opa/cartsync/pkg/infra/mysql"
	"opa/cartsync/pkg/tabular"
)

// RunExportAll 全量模式：拉取所有待审核包裹，导出并汇总拣货单
func (p *Pipeline) RunExportAll(ctx context.Context) error {
	client, err := p.dxmClient()
	if err != nil {
		return err
	}

	packageIDs, err := client.AllPendingPackages(ctx)
	if err != nil {
		return err
	}
	if len(packageIDs) == 0 {
		p.logger.Infof(ctx, "[Pipeline] No pending packages, nothing to export")
		return nil
	}

	return p.exportAndAudit(ctx, client, packageIDs, ModeExportAll)
}

// RunExportWorkbook 工作簿模式：从订单工作簿读取订单号，解析后导出汇总
// 仅当整条链路成功才删除源工作簿
func (p *Pipeline) RunExportWorkbook(ctx context.Context) error {
	located, err := tabular.Locate(p.cfg.Paths.OrderIDsDir, tabular.LocateOptions{CreateDir: true})
	if err != nil {
		return err
	}
	if located.Status == tabular.LocateEmpty {
		p.logger.Infof(ctx, "[Pipeline] No order workbook in %s, nothing to do", p.cfg.Paths.OrderIDsDir)
		return nil
	}

	p.logger.Infof(ctx, "[Pipeline] Order workbook: %s", located.Path)

	orderIDs, err := readOrderIDs(located.Path)
	if err != nil {
		return err
	}
	if len(orderIDs) == 0 {
		p.logger.Warnf(ctx, "[Pipeline] Order workbook has no usable order ids")
		return nil
	}
	p.logger.Infof(ctx, "[Pipeline] %d order ids loaded", len(orderIDs))

	client, err := p.dxmClient()
	if err != nil {
		return err
	}

	packageIDs, err := client.ResolvePackages(ctx, orderIDs)
	if err != nil {
		return err
	}
	if len(packageIDs) == 0 {
		p.logger.Warnf(ctx, "[Pipeline] No order resolved to a pending package, nothing to export")
		return nil
	}

	if err := p.exportAndAudit(ctx, client, packageIDs, ModeExportWorkbook); err != nil {
		return err
	}

	// 到这里整条链路成功，源工作簿已消费完毕
	if tabular.RemoveWithin(located.Path, p.cfg.Paths.OrderIDsDir) {
		p.logger.Infof(ctx, "[Pipeline] Consumed order workbook removed: %s", located.Path)
	} else {
		p.logger.Warnf(ctx, "[Pipeline] Could not remove order workbook: %s", located.Path)
	}
	return nil
}

// exportAndAudit 两个导出模式共用的后半段：导出 → 逐个汇总 → 门控审核
func (p *Pipeline) exportAndAudit(ctx context.Context, client *dxm.Client, packageIDs []string, mode string) error {
	paths, err := client.Export(ctx, packageIDs, p.cfg.Paths.PicklistDir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		sheet, err := tabular.Read(path)
		if err != nil {
			p.logger.Warnf(ctx, "[Pipeline] Read artifact failed, aggregation skipped: %v", err)
			continue
		}
		if picklist.Aggregate(ctx, sheet, p.logger) {
			if err := tabular.Write(path, sheet); err != nil {
				p.logger.Warnf(ctx, "[Pipeline] Write aggregated artifact failed: %v", err)
			}
		}
	}

	// 审核不可逆，双开关门控
	if !p.cfg.Toggles.DryRun && p.cfg.Toggles.EnableAudit {
		if err := client.Audit(ctx, packageIDs); err != nil {
			return err
		}
	} else {
		p.logger.Infof(ctx, "[Pipeline] Audit skipped (dry_run=%v enable_audit=%v)",
			p.cfg.Toggles.DryRun, p.cfg.Toggles.EnableAudit)
	}

	artifact := ""
	if len(paths) > 0 {
		artifact = paths[0]
	}
	p.recordRun(ctx, &mysql.RunRecord{
		RunID:        runID(ctx),
		Mode:         mode,
		DryRun:       p.cfg.Toggles.DryRun,
		PackageCount: len(packageIDs),
		ArtifactPath: artifact,
	}, "FINISHED")

	return nil
}

// 订单号列里可能混进来的表头回显，过滤掉
var orderHeaderEchoes = map[string]struct{}{
	"order id": {},
	"order no": {},
	"订单号":      {},
}

// readOrderIDs 从订单工作簿提取订单号序列
// 优先选表头含 order + no 的列，否则退化为第一列；按首次出现去重
func readOrderIDs(path string) ([]string, error) {
	sheet, err := tabular.Read(path)
	if err != nil {
		return nil, err
	}
	if len(sheet.Columns) == 0 {
		return nil, nil
	}

	col := sheet.FindColumn(func(c string) bool {
		name := strings.ToLower(strings.ReplaceAll(c, " ", ""))
		return strings.Contains(name, "order") && strings.Contains(name, "no")
	})
	if col == "" {
		col = sheet.Columns[0]
	}

	orderIDs := make([]string, 0, len(sheet.Rows))
	seen := make(map[string]struct{})
	for _, row := range sheet.Rows {
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if _, echo := orderHeaderEchoes[strings.ToLower(v)]; echo {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		orderIDs = append(orderIDs, v)
	}
	return orderIDs, nil
}
