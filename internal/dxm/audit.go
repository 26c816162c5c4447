package dxm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"opa/cartsync/pkg/errorutil"
)

// Audit 按固定分片提交批量审核
// 审核会不可逆地推进远端订单状态：调用方必须自行用 dry_run 与
// enable_audit 两个开关做外部门控，这里不再判断
// 单个分片 code != 0 只记告警继续下一片；HTTP 层失败则终止整个审核
func (c *Client) Audit(ctx context.Context, packageIDs []string) error {
	chunks := Chunk(packageIDs, c.opts.PageSize)

	for i, chunk := range chunks {
		c.logger.Infof(ctx, "[Audit] Chunk %d/%d, %d packages", i+1, len(chunks), len(chunk))

		if err := c.auditChunk(ctx, chunk); err != nil {
			return fmt.Errorf("audit chunk %d failed: %w", i+1, err)
		}
	}

	return nil
}

// auditChunk 审核单个分片
func (c *Client) auditChunk(ctx context.Context, packageIDs []string) error {
	form := url.Values{
		"packageIds": {strings.Join(packageIDs, ",")},
	}

	resp, err := c.session.PostForm(ctx, c.auditURL(), form)
	if err != nil {
		return errorutil.Transport("batchAudit.json request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorutil.Protocol("batchAudit.json returned HTTP %d", resp.StatusCode)
	}

	var parsed auditResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// 响应体异常只告警，审核请求本身已送达
		c.logger.Errorf(ctx, "[Audit] batchAudit.json response is not JSON: %v", err)
		return nil
	}

	if parsed.Code == 0 {
		c.logger.Infof(ctx, "[Audit] Chunk OK, msg=%s", parsed.Msg)
	} else {
		c.logger.Warnf(ctx, "[Audit] Chunk returned code=%d, msg=%s", parsed.Code, parsed.Msg)
	}
	return nil
}
