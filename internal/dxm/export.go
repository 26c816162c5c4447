package dxm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opa/cartsync/pkg/errorutil"
)

// Export 按固定分片导出拣货单
// 每个分片独立走 提交 → 轮询 → 下载 三步；任一分片致命失败则整体终止
// 返回所有下载成功的本地文件路径
func (c *Client) Export(ctx context.Context, packageIDs []string, downloadDir string) ([]string, error) {
	chunks := Chunk(packageIDs, c.opts.PageSize)
	paths := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		c.logger.Infof(ctx, "[Export] Chunk %d/%d, %d packages", i+1, len(chunks), len(chunk))

		path, err := c.exportChunk(ctx, chunk, downloadDir)
		if err != nil {
			return nil, fmt.Errorf("export chunk %d failed: %w", i+1, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// exportChunk 处理单个分片
func (c *Client) exportChunk(ctx context.Context, packageIDs []string, downloadDir string) (string, error) {
	token, err := c.submitExport(ctx, packageIDs)
	if err != nil {
		return "", err
	}

	artifactURL, err := c.pollProcess(ctx, token)
	if err != nil {
		return "", err
	}

	return c.download(ctx, artifactURL, downloadDir)
}

// submitExport 创建导出任务，返回任务凭据
// 响应中没有凭据属于致命错误，不重试
func (c *Client) submitExport(ctx context.Context, packageIDs []string) (string, error) {
	form := url.Values{
		"packageIds": {strings.Join(packageIDs, ",")},
		"orderField": {"order_pay_time"},
		"isSearch":   {"0"},
		"isAll":      {"0"},
	}

	resp, err := c.session.PostForm(ctx, c.exportURL(), form)
	if err != nil {
		return "", errorutil.Transport("exportPickData.json request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorutil.Protocol("exportPickData.json returned HTTP %d", resp.StatusCode)
	}

	var parsed exportResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errorutil.Protocol("exportPickData.json response is not JSON: %v", err)
	}
	if parsed.UUID == "" {
		return "", errorutil.Protocol("exportPickData.json returned no job token")
	}

	c.logger.Infof(ctx, "[Export] Job token: %s", parsed.UUID)
	return parsed.UUID, nil
}

// pollProcess 轮询导出任务进度直至拿到下载链接
// 仅当 code==1 且消息是合法 http(s) URL 才算完成；其余情况消耗一次尝试
// 尝试次数耗尽仍未完成即致命
func (c *Client) pollProcess(ctx context.Context, token string) (string, error) {
	form := url.Values{"uuid": {token}}

	for attempt := 1; attempt <= c.opts.PollMaxTries; attempt++ {
		c.logger.Infof(ctx, "[Export] Poll attempt %d/%d", attempt, c.opts.PollMaxTries)

		msg, ok := c.pollOnce(ctx, form)
		if ok {
			c.logger.Infof(ctx, "[Export] Artifact ready: %s", msg)
			return msg, nil
		}

		if attempt < c.opts.PollMaxTries {
			select {
			case <-ctx.Done():
				return "", errorutil.Transport("export poll cancelled: %v", ctx.Err())
			case <-time.After(c.opts.PollInterval):
			}
		}
	}

	return "", errorutil.Protocol("checkProcess.json gave no download URL after %d attempts", c.opts.PollMaxTries)
}

// pollOnce 执行一次进度查询；任何异常都按"未完成"处理
func (c *Client) pollOnce(ctx context.Context, form url.Values) (string, bool) {
	resp, err := c.session.PostForm(ctx, c.processURL(), form)
	if err != nil {
		c.logger.Warnf(ctx, "[Export] Poll request failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf(ctx, "[Export] checkProcess.json returned HTTP %d", resp.StatusCode)
		return "", false
	}

	var parsed processResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warnf(ctx, "[Export] checkProcess.json response is not JSON: %v", err)
		return "", false
	}

	pm := parsed.ProcessMsg
	c.logger.Infof(ctx, "[Export] Progress: code=%d num=%d total=%d", pm.Code, pm.Num, pm.TotalNum)

	if pm.Code == 1 && isHTTPURL(pm.Msg) {
		return pm.Msg, true
	}
	return "", false
}

// isHTTPURL 判断消息是否为合法 http(s) 下载链接
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// download 流式下载导出产物到本地目录，返回落盘路径
// 下载失败致命，不重试
func (c *Client) download(ctx context.Context, artifactURL, downloadDir string) (string, error) {
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return "", errorutil.Environment("create download dir failed: %v", err)
	}

	parsed, err := url.Parse(artifactURL)
	if err != nil {
		return "", errorutil.Protocol("artifact URL is malformed: %v", err)
	}
	filename := filepath.Base(parsed.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "export.xlsx"
	}
	localPath := filepath.Join(downloadDir, filename)

	c.logger.Infof(ctx, "[Export] Downloading %s -> %s", artifactURL, localPath)

	resp, err := c.session.Get(ctx, artifactURL, map[string]string{
		"Referer": c.opts.BaseURL + "/",
	})
	if err != nil {
		return "", errorutil.Transport("artifact download failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errorutil.Protocol("artifact download returned HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return "", errorutil.Environment("create artifact file failed: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", errorutil.Transport("artifact write failed: %v", err)
	}

	c.logger.Infof(ctx, "[Export] Downloaded: %s", localPath)
	return localPath, nil
}
