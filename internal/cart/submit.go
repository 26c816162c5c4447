package cart

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"opa/cartsync/internal/mapping"
	"opa/cartsync/pkg/logger"
)

// Submitter 加购状态机
// 单线程逐行驱动：校验失败在本地记录终态，活动提交前插入随机步调延迟
type Submitter struct {
	client       *Client
	live         bool // false 时所有可提交行记为 DRY_RUN，不发请求
	purchaseType string
	paceMin      time.Duration
	paceMax      time.Duration
	rng          *rand.Rand
	logger       logger.Logger
}

// NewSubmitter 创建状态机
func NewSubmitter(client *Client, live bool, purchaseType string, paceMin, paceMax time.Duration, log logger.Logger) *Submitter {
	return &Submitter{
		client:       client,
		live:         live,
		purchaseType: purchaseType,
		paceMin:      paceMin,
		paceMax:      paceMax,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       log,
	}
}

// Stats 一次提交运行的计数
type Stats struct {
	Skipped int // 历史 SUCCESS 行，重跑直接跳过
	Success int
	Failed  int
	DryRun  int
}

// outcome 单行处理结果（统计用）
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSuccess
	outcomeFailed
	outcomeDryRun
)

// Run 驱动每一行走完 校验 → 提交 → 终态
// 单行失败只记录在行内，绝不中断其余行
func (s *Submitter) Run(ctx context.Context, rows []*Row) Stats {
	var stats Stats

	for _, row := range rows {
		switch s.step(ctx, row) {
		case outcomeSkipped:
			stats.Skipped++
		case outcomeSuccess:
			stats.Success++
		case outcomeFailed:
			stats.Failed++
		case outcomeDryRun:
			stats.DryRun++
		}
	}

	s.logger.Infof(ctx, "[Submit] Done: success=%d failed=%d dry_run=%d skipped=%d",
		stats.Success, stats.Failed, stats.DryRun, stats.Skipped)
	return stats
}

// 终态备注文案
const (
	remarkSuccess   = "加入购物车成功"
	remarkDryRun    = "配置中禁用加购（未调用 1688 接口）"
	remarkStockPrep = "备货"
	remarkNoSpec    = "Spec ID 为空"
	remarkUnmapped  = "Mapping_Data 未找到该 SKU 的映射"
	remarkNoOfferID = "无法从商品链接解析商品ID"
)

// step 处理单行，规则按序匹配，首个命中即终态
func (s *Submitter) step(ctx context.Context, row *Row) outcome {
	// 1. 幂等重跑：历史成功行不再提交
	if row.Status == StatusSuccess {
		s.logger.Debugf(ctx, "[Submit] Row %d (%s) already SUCCESS, skipped", row.Index, row.SKU)
		return outcomeSkipped
	}

	// 2a. 备货专用行：压到最后人工处理
	if isStockPrepMark(row.Link) || isStockPrepMark(row.ProductID) || isStockPrepMark(row.SpecID) {
		row.fail(FailStockPrep, remarkStockPrep)
		return outcomeFailed
	}

	// 2b. 映射缺失哨兵：给出可归因的失败而不是晦涩的解析错误
	if row.Link == mapping.UnmappedLink {
		row.fail(FailUnmapped, remarkUnmapped)
		return outcomeFailed
	}

	// 2c. 规格标识为空
	if row.SpecID == "" {
		row.fail(FailMissingSpec, remarkNoSpec)
		return outcomeFailed
	}

	// 3. 数量校验
	qty, err := parseQuantity(row.Quantity)
	if err != nil {
		row.fail(FailBadQuantity, "数量错误: "+err.Error())
		return outcomeFailed
	}

	// 4. 商品 ID 解析
	offerID := ExtractOfferID(row.Link)
	if offerID == "" {
		row.fail(FailNoOfferID, remarkNoOfferID)
		return outcomeFailed
	}

	s.logger.Infof(ctx, "[Submit] Row %d: sku=%s offerId=%s specId=%s qty=%d",
		row.Index, row.SKU, offerID, row.SpecID, qty)

	// 5. 配置禁用：记 DRY_RUN，不发请求
	if !s.live {
		row.Status = StatusDryRun
		row.Remark = remarkDryRun
		return outcomeDryRun
	}

	// 6. 活动提交：先随机延迟降低批量特征
	s.pace(ctx)

	result, err := s.client.AddToCart(ctx, offerID, row.SpecID, qty, s.purchaseType)
	if err != nil {
		s.logger.Warnf(ctx, "[Submit] Row %d request failed: %v", row.Index, err)
		row.fail(FailTransport, "请求异常: "+err.Error())
		return outcomeFailed
	}

	if result.Success {
		row.Status = StatusSuccess
		row.Reason = FailNone
		row.Remark = remarkSuccess
		return outcomeSuccess
	}

	s.logger.Warnf(ctx, "[Submit] Row %d rejected: HTTP %d, body=%s",
		row.Index, result.HTTPStatus, result.BodyPreview)
	row.fail(FailResponse, result.BodyPreview)
	return outcomeFailed
}

// pace 活动提交前的随机步调延迟
func (s *Submitter) pace(ctx context.Context) {
	span := int64(s.paceMax - s.paceMin)
	delay := s.paceMin
	if span > 0 {
		delay += time.Duration(s.rng.Int63n(span + 1))
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// SortRows 按优先级桶稳定排序
// 0: 规格标识为空的失败  1: 其它失败  2: DRY_RUN / 未知  3: 成功  4: 备货
// 同桶内保持原有相对顺序
func SortRows(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].bucket() < rows[j].bucket()
	})
}
