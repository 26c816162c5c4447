package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Session 带认证头的 HTTP 会话
// 所有远程调用都经过 Session，统一注入 UA / Cookie / 请求头与超时
type Session struct {
	client  *http.Client
	headers map[string]string
}

// NewSession 创建会话
// baseHeaders 中的每个键值对都会附加到每次请求上
func NewSession(timeout time.Duration, baseHeaders map[string]string) *Session {
	headers := make(map[string]string, len(baseHeaders))
	for k, v := range baseHeaders {
		headers[k] = v
	}
	return &Session{
		client:  &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// PostForm 发送 application/x-www-form-urlencoded POST 请求
func (s *Session) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	s.applyHeaders(req, nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	return s.client.Do(req)
}

// Get 发送 GET 请求，extra 中的头会覆盖会话默认头
func (s *Session) Get(ctx context.Context, rawURL string, extra map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	s.applyHeaders(req, extra)
	return s.client.Do(req)
}

// applyHeaders 注入会话默认头与附加头
func (s *Session) applyHeaders(req *http.Request, extra map[string]string) {
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
}
