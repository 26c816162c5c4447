package pipeline

import (
	"context"
	"time"

	"opa/cartsync/internal/cart"
	"opa/cartsync/internal/dxm"
	"opa/cartsync/pkg/config"
	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/infra/mysql"
	"opa/cartsync/pkg/infra/redis"
	"opa/cartsync/pkg/logger"
)

// 运行模式
const (
	ModeExportAll      = "export-all"      // 全量待审核订单 → 导出汇总
	ModeExportWorkbook = "export-workbook" // 指定订单工作簿 → 导出汇总
	ModeSubmit         = "submit"          // 待加购工作簿 → 批量加购
	ModeScrape         = "scrape"          // 商品链接 → 规格数据表
)

// Pipeline 管线编排器
// 每次运行构造一次：配置、日志与可选的运行记录/通知基础设施在此聚合
type Pipeline struct {
	cfg    *config.Config
	logger logger.Logger
	runDAO *mysql.RunDAO // 可为 nil
	pubsub *redis.PubSub // 可为 nil
}

// New 创建管线编排器
func New(cfg *config.Config, log logger.Logger, runDAO *mysql.RunDAO, pubsub *redis.PubSub) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: log,
		runDAO: runDAO,
		pubsub: pubsub,
	}
}

// dxmClient 构造订单平台客户端（凭证按次加载）
func (p *Pipeline) dxmClient() (*dxm.Client, error) {
	cred, err := credential.Load("店小秘", p.cfg.Dxm.CookieEnv, p.cfg.Dxm.CookiePath)
	if err != nil {
		return nil, err
	}
	return dxm.NewClient(dxm.Options{
		BaseURL:      p.cfg.Dxm.BaseURL,
		UserAgent:    p.cfg.HTTP.UserAgent,
		Timeout:      p.cfg.HTTP.Timeout,
		PageSize:     p.cfg.Dxm.PageSize,
		PollInterval: p.cfg.Dxm.PollInterval,
		PollMaxTries: p.cfg.Dxm.PollMaxTries,
	}, cred, p.logger), nil
}

// cartClient 构造货源平台加购客户端
func (p *Pipeline) cartClient() (*cart.Client, error) {
	cred, err := credential.Load("1688", p.cfg.Ali.CookieEnv, p.cfg.Ali.CookiePath)
	if err != nil {
		return nil, err
	}
	return cart.NewClient(cart.Options{
		CartURL:   p.cfg.Ali.CartURL,
		RenderURL: p.cfg.Ali.RenderURL,
		UserAgent: p.cfg.HTTP.UserAgent,
		Timeout:   p.cfg.HTTP.Timeout,
	}, cred, p.logger), nil
}

// recordRun 落库运行记录并发布完成通知
// 两者都是可选基础设施，失败只告警，绝不影响主流程结果
func (p *Pipeline) recordRun(ctx context.Context, rec *mysql.RunRecord, status string) {
	if p.runDAO != nil {
		if err := p.runDAO.SaveRun(ctx, rec); err != nil {
			p.logger.Warnf(ctx, "[Pipeline] Save run record failed: %v", err)
		}
	}

	if p.pubsub != nil {
		note := &redis.RunNotification{
			RunID:        rec.RunID,
			Mode:         rec.Mode,
			Status:       status,
			SuccessCount: rec.SuccessCount,
			FailedCount:  rec.FailedCount,
			ArtifactPath: rec.ArtifactPath,
			Timestamp:    time.Now().Unix(),
		}
		if err := p.pubsub.PublishRunComplete(ctx, p.cfg.Redis.Channel, note); err != nil {
			p.logger.Warnf(ctx, "[Pipeline] Publish run notification failed: %v", err)
		}
	}
}

// runID 从 Context 取本次运行标识
func runID(ctx context.Context) string {
	if v, ok := ctx.Value("run_id").(string); ok {
		return v
	}
	return ""
}
