package dxm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// listForm 构造 list.json 查询表单
// 【待审核】状态的字段组合固定，只有分页与订单号搜索会变化
func (c *Client) listForm(pageNo, pageSize int, orderID string) url.Values {
	isSearch := "0"
	searchType := ""
	if orderID != "" {
		isSearch = "1"
		searchType = "orderId"
	}
	return url.Values{
		"pageNo":          {strconv.Itoa(pageNo)},
		"pageSize":        {strconv.Itoa(pageSize)},
		"shopId":          {"-1"},
		"state":           {"paid"}, // 待审核
		"platform":        {""},
		"isSearch":        {isSearch},
		"searchType":      {searchType},
		"authId":          {"-1"},
		"startTime":       {""},
		"endTime":         {""},
		"country":         {""},
		"orderField":      {"order_pay_time"},
		"isVoided":        {"0"},
		"isRemoved":       {"0"},
		"printJh":         {"-1"},
		"printMd":         {"-1"},
		"commitPlatform":  {""},
		"productStatus":   {""},
		"jhComment":       {"-1"},
		"storageId":       {"0"},
		"isOversea":       {"-1"},
		"isFree":          {"0"},
		"isBatch":         {"0"},
		"custom":          {"-1"},
		"timeOut":         {"0"},
		"refundStatus":    {"0"},
		"buyerAccount":    {""},
		"forbiddenStatus": {"-1"},
		"forbiddenReason": {"0"},
		"behindTrack":     {"-1"},
		"orderId":         {orderID},
	}
}

// queryListPage 请求一页列表，返回行集
func (c *Client) queryListPage(ctx context.Context, pageNo, pageSize int, orderID string) ([]packageRow, error) {
	resp, err := c.session.PostForm(ctx, c.listURL(), c.listForm(pageNo, pageSize, orderID))
	if err != nil {
		return nil, fmt.Errorf("list.json request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list.json returned HTTP %d", resp.StatusCode)
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("list.json response is not JSON: %w", err)
	}

	return parsed.Data.Page.List, nil
}

// AllPendingPackages 分页拉取所有【待审核】包裹标识（Mode 1）
// 返回满页则继续翻页，首个短页/空页即停止；包裹标识按首次出现去重
func (c *Client) AllPendingPackages(ctx context.Context) ([]string, error) {
	c.logger.Infof(ctx, "[Resolver] Fetching all pending packages via list.json")

	packageIDs := make([]string, 0)
	seen := make(map[string]struct{})

	for pageNo := 1; ; pageNo++ {
		c.logger.Infof(ctx, "[Resolver] Requesting page %d", pageNo)
		rows, err := c.queryListPage(ctx, pageNo, c.opts.PageSize, "")
		if err != nil {
			// 中断当前分页，不重试；已累计的结果照常返回
			c.logger.Warnf(ctx, "[Resolver] Page %d failed, stopping pagination: %v", pageNo, err)
			break
		}
		if len(rows) == 0 {
			c.logger.Infof(ctx, "[Resolver] Page %d empty, pagination done", pageNo)
			break
		}

		c.logger.Infof(ctx, "[Resolver] Page %d returned %d rows", pageNo, len(rows))
		for _, row := range rows {
			pkg := row.PackageID()
			if pkg == "" {
				continue
			}
			if _, ok := seen[pkg]; ok {
				continue
			}
			seen[pkg] = struct{}{}
			packageIDs = append(packageIDs, pkg)
		}

		if len(rows) < c.opts.PageSize {
			c.logger.Infof(ctx, "[Resolver] Last page reached (< page size)")
			break
		}
	}

	c.logger.Infof(ctx, "[Resolver] Total pending packages: %d", len(packageIDs))
	return packageIDs, nil
}

// lookupPackage 按订单号精确查询包裹标识（Mode 2 单条）
// 找不到订单视为"当前不在待审核"，返回空串且无错误
func (c *Client) lookupPackage(ctx context.Context, orderID string) (string, error) {
	c.logger.Infof(ctx, "[Resolver] Looking up orderId=%s", orderID)

	rows, err := c.queryListPage(ctx, 1, 50, orderID)
	if err != nil {
		return "", err
	}

	if len(rows) == 0 {
		c.logger.Infof(ctx, "[Resolver] orderId=%s not in pending state", orderID)
		return "", nil
	}

	for _, row := range rows {
		if row.OrderID == orderID {
			pkg := row.PackageID()
			c.logger.Infof(ctx, "[Resolver] orderId=%s -> packageId=%s", orderID, pkg)
			return pkg, nil
		}
	}

	// 平台返回了数据但没有精确匹配的订单号，按不匹配丢弃
	c.logger.Warnf(ctx, "[Resolver] list.json rows contain no exact match for orderId=%s, skipped", orderID)
	return "", nil
}

// ResolvePackages 将订单号集合解析为去重的包裹标识序列（Mode 2）
// 单条查询失败只跳过该订单，不终止整批
func (c *Client) ResolvePackages(ctx context.Context, orderIDs []string) ([]string, error) {
	packageIDs := make([]string, 0, len(orderIDs))
	seen := make(map[string]struct{})

	for _, orderID := range orderIDs {
		if orderID == "" {
			continue
		}
		pkg, err := c.lookupPackage(ctx, orderID)
		if err != nil {
			c.logger.Warnf(ctx, "[Resolver] Lookup failed for orderId=%s: %v", orderID, err)
			continue
		}
		if pkg == "" {
			continue
		}
		if _, ok := seen[pkg]; ok {
			continue
		}
		seen[pkg] = struct{}{}
		packageIDs = append(packageIDs, pkg)
	}

	c.logger.Infof(ctx, "[Resolver] Resolved %d packages from %d orders", len(packageIDs), len(orderIDs))
	return packageIDs, nil
}
