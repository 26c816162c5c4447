package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"opa/cartsync/internal/cart"
	"opa/cartsync/internal/mapping"
	"opa/cartsync/pkg/infra/mysql"
	"opa/cartsync/pkg/tabular"
)

// RunSubmit 加购模式：定位待加购工作簿，按需映射，逐行提交，归档产物
// workbookPath 非空时直接处理该文件，否则取目录内最新工作簿
func (p *Pipeline) RunSubmit(ctx context.Context, workbookPath, purchaseType string) error {
	srcPath := workbookPath
	if srcPath == "" {
		located, err := tabular.Locate(p.cfg.Paths.PicklistDir, tabular.LocateOptions{SkipDone: true, CreateDir: true})
		if err != nil {
			return err
		}
		if located.Status == tabular.LocateEmpty {
			p.logger.Infof(ctx, "[Pipeline] No workbook in %s, nothing to submit", p.cfg.Paths.PicklistDir)
			return nil
		}
		srcPath = located.Path
	}
	p.logger.Infof(ctx, "[Pipeline] Workbook to submit: %s", srcPath)

	sheet, err := tabular.Read(srcPath)
	if err != nil {
		return err
	}

	// 已带商品链接与规格标识的表跳过映射
	if mapping.NeedsResolution(sheet) {
		table, err := mapping.LoadTable(p.cfg.Paths.MappingPath)
		if err != nil {
			return err
		}
		p.logger.Infof(ctx, "[Pipeline] Mapping table loaded: %d records", table.Len())
		if _, err := mapping.Resolve(ctx, sheet, table, p.logger); err != nil {
			return err
		}
	} else {
		p.logger.Infof(ctx, "[Pipeline] Workbook already carries sourcing columns, mapping skipped")
	}

	rows, err := cart.LoadRows(sheet)
	if err != nil {
		return err
	}
	p.logger.Infof(ctx, "[Pipeline] %d rows loaded", len(rows))

	client, err := p.cartClient()
	if err != nil {
		return err
	}

	live := p.cfg.Toggles.EnableAddToCart && !p.cfg.Toggles.DryRun
	if live && p.cfg.Ali.Warmup {
		if err := client.Warmup(ctx); err != nil {
			p.logger.Warnf(ctx, "[Pipeline] Warmup failed: %v", err)
		}
	}

	submitter := cart.NewSubmitter(client, live, purchaseType,
		p.cfg.Ali.PaceMinDelay, p.cfg.Ali.PaceMaxDelay, p.logger)
	stats := submitter.Run(ctx, rows)

	cart.SortRows(rows)

	donePath := doneSiblingPath(srcPath)
	if err := tabular.Write(donePath, cart.ResultSheet(rows)); err != nil {
		return err
	}
	p.logger.Infof(ctx, "[Pipeline] Result written: %s", donePath)

	// 源表与结果表一起归档，工作目录保持干净
	archived := donePath
	if dst, err := tabular.ArchiveMove(donePath, p.cfg.Paths.FinishedDir); err == nil {
		archived = dst
	} else {
		p.logger.Warnf(ctx, "[Pipeline] Archive result failed: %v", err)
	}
	if _, err := tabular.ArchiveMove(srcPath, p.cfg.Paths.FinishedDir); err != nil {
		p.logger.Warnf(ctx, "[Pipeline] Archive source failed: %v", err)
	}

	p.recordRun(ctx, &mysql.RunRecord{
		RunID:        runID(ctx),
		Mode:         ModeSubmit,
		DryRun:       !live,
		PackageCount: len(rows),
		SuccessCount: stats.Success,
		FailedCount:  stats.Failed,
		SkippedCount: stats.Skipped,
		ArtifactPath: archived,
	}, "FINISHED")

	return nil
}

// doneSiblingPath 结果表路径：同目录下 "<原名>(done).xlsx"
func doneSiblingPath(src string) string {
	dir := filepath.Dir(src)
	name := filepath.Base(src)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return filepath.Join(dir, base+"(done)"+ext)
}
