package dxm

import (
	"time"

	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/httpx"
	"opa/cartsync/pkg/logger"
)

// Options 客户端参数
type Options struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	PageSize     int           // 平台单次最大批量，分页/导出/审核共用
	PollInterval time.Duration // 导出任务轮询间隔
	PollMaxTries int           // 导出任务轮询次数上限
}

// Client 订单平台客户端
// 覆盖包裹列表查询、拣货单导出与批量审核三组接口
type Client struct {
	opts    Options
	session *httpx.Session
	logger  logger.Logger
}

// NewClient 创建订单平台客户端
func NewClient(opts Options, cred *credential.Credential, log logger.Logger) *Client {
	headers := map[string]string{
		"User-Agent":       opts.UserAgent,
		"Cookie":           cred.Cookie,
		"Origin":           opts.BaseURL,
		"Referer":          opts.BaseURL + "/web/order/paid?go=m100",
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"X-Requested-With": "XMLHttpRequest",
	}
	return &Client{
		opts:    opts,
		session: httpx.NewSession(opts.Timeout, headers),
		logger:  log,
	}
}

func (c *Client) listURL() string {
	return c.opts.BaseURL + "/api/package/list.json"
}

func (c *Client) exportURL() string {
	return c.opts.BaseURL + "/order/exportPickData.json"
}

func (c *Client) processURL() string {
	return c.opts.BaseURL + "/checkProcess.json"
}

func (c *Client) auditURL() string {
	return c.opts.BaseURL + "/api/package/batchAudit.json"
}
