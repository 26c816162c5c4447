package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/errorutil"
	"opa/cartsync/pkg/httpx"
	"opa/cartsync/pkg/logger"
)

// PurchaseType 加购方式
const (
	PurchaseWholesale = ""                      // 批发
	PurchaseConsign   = "consign_purchase_type" // 代发
)

// previewLen 失败备注中响应片段的最大长度
const previewLen = 180

// Options 客户端参数
type Options struct {
	CartURL   string // add_to_cart_list_new.jsx
	RenderURL string // purchaseRender.jsx（预热，可选）
	UserAgent string
	Timeout   time.Duration
}

// Client 货源平台加购客户端
type Client struct {
	opts    Options
	session *httpx.Session
	logger  logger.Logger
}

// NewClient 创建加购客户端
func NewClient(opts Options, cred *credential.Credential, log logger.Logger) *Client {
	headers := map[string]string{
		"User-Agent":       opts.UserAgent,
		"Accept":           "*/*",
		"Accept-Language":  "zh-CN,zh;q=0.9",
		"Origin":           "https://www.1688.com",
		"Referer":          "https://www.1688.com/",
		"X-Requested-With": "XMLHttpRequest",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Site":   "same-site",
		"Cookie":           cred.Cookie,
	}
	return &Client{
		opts:    opts,
		session: httpx.NewSession(opts.Timeout, headers),
		logger:  log,
	}
}

// specEntry specData 表单字段的单个条目
type specEntry struct {
	Amount                string        `json:"amount"`
	SpecID                string        `json:"specId"`
	SelectedTradeServices []interface{} `json:"selectedTradeServices"`
}

// sceneEntry ext 表单字段的单个条目
type sceneEntry struct {
	SceneCode string `json:"sceneCode"`
}

// buildForm 构造加购接口的 POST 表单
func buildForm(offerID, specID string, amount int, purchaseType string) (url.Values, error) {
	ext, err := json.Marshal([]sceneEntry{{SceneCode: ""}})
	if err != nil {
		return nil, err
	}
	specData, err := json.Marshal([]specEntry{{
		Amount:                strconv.Itoa(amount),
		SpecID:                specID,
		SelectedTradeServices: []interface{}{},
	}})
	if err != nil {
		return nil, err
	}

	return url.Values{
		"type":            {"offer"},
		"cargoIdentity":   {offerID},
		"returnType":      {"url"},
		"needTotalPrice":  {"false"},
		"promotionSwitch": {"false"},
		"t":               {strconv.FormatInt(time.Now().UnixMilli(), 10)},
		"purchaseType":    {purchaseType},
		"ext":             {string(ext)},
		"specData":        {string(specData)},
	}, nil
}

// AddResult 一次加购调用的结构化结果
// 传输层失败通过 error 返回；到达服务端后的成败都体现在这里
type AddResult struct {
	HTTPStatus  int
	Success     bool   // HTTP 200 且响应体 success == true
	BodyPreview string // 截断压平后的响应片段，用于失败备注
}

// AddToCart 提交一件商品到进货单
func (c *Client) AddToCart(ctx context.Context, offerID, specID string, amount int, purchaseType string) (*AddResult, error) {
	form, err := buildForm(offerID, specID, amount, purchaseType)
	if err != nil {
		return nil, errorutil.Protocol("build cart form failed: %v", err)
	}

	resp, err := c.session.PostForm(ctx, c.opts.CartURL, form)
	if err != nil {
		return nil, errorutil.Transport("%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorutil.Transport("read cart response failed: %v", err)
	}

	result := &AddResult{
		HTTPStatus:  resp.StatusCode,
		BodyPreview: preview(string(body)),
	}

	if resp.StatusCode == http.StatusOK {
		var parsed struct {
			Success bool `json:"success"`
		}
		if json.Unmarshal(body, &parsed) == nil && parsed.Success {
			result.Success = true
		}
	}

	return result, nil
}

// Warmup 预热进货单页面接口，模拟真实打开行为
// 失败只影响拟真度，由调用方决定是否关心
func (c *Client) Warmup(ctx context.Context) error {
	if c.opts.RenderURL == "" {
		return nil
	}
	resp, err := c.session.PostForm(ctx, c.opts.RenderURL, url.Values{})
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.logger.Infof(ctx, "[Cart] purchaseRender warmup sent")
	return nil
}

// preview 截断并压平响应体，供失败备注使用
func preview(body string) string {
	s := strings.TrimSpace(body)
	runes := []rune(s)
	if len(runes) > previewLen {
		s = string(runes[:previewLen])
	}
	return strings.ReplaceAll(s, "\n", " ")
}
