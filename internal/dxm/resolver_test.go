package dxm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/logger"
)

// newTestClient 指向本地服务的订单平台客户端
func newTestClient(t *testing.T, server *httptest.Server, pageSize int) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:      server.URL,
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
		PageSize:     pageSize,
		PollInterval: 10 * time.Millisecond,
		PollMaxTries: 3,
	}, &credential.Credential{Name: "test", Cookie: "sid=abc"}, logger.Nop{})
}

func listJSON(rows ...string) string {
	return fmt.Sprintf(`{"data":{"page":{"list":[%s]}}}`, strings.Join(rows, ","))
}

func pkgJSON(orderID, idStr string) string {
	return fmt.Sprintf(`{"orderId":%q,"idStr":%q}`, orderID, idStr)
}

func TestAllPendingPackagesPaginates(t *testing.T) {
	// pageSize=2：第一页满页继续翻，第二页短页即停
	pages := map[string]string{
		"1": listJSON(pkgJSON("o1", "p1"), pkgJSON("o2", "p2")),
		"2": listJSON(pkgJSON("o3", "p3")),
	}
	var lastPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/package/list.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "paid", r.PostForm.Get("state"))
		lastPage = r.PostForm.Get("pageNo")
		fmt.Fprint(w, pages[lastPage])
	}))
	defer server.Close()

	client := newTestClient(t, server, 2)
	ids, err := client.AllPendingPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
	assert.Equal(t, "2", lastPage)
}

func TestAllPendingPackagesDedup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listJSON(pkgJSON("o1", "p1"), pkgJSON("o1-copy", "p1")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 5)
	ids, err := client.AllPendingPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestAllPendingPackagesStopsOnPageError(t *testing.T) {
	// 第二页 500：中断翻页，已拿到的第一页照常返回
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, listJSON(pkgJSON("o1", "p1"), pkgJSON("o2", "p2")))
	}))
	defer server.Close()

	client := newTestClient(t, server, 2)
	ids, err := client.AllPendingPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func TestResolvePackages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.PostForm.Get("orderId") {
		case "o1":
			// 平台可能连带返回相邻订单，必须精确匹配订单号
			fmt.Fprint(w, listJSON(pkgJSON("o-other", "p-other"), pkgJSON("o1", "p1")))
		case "o2":
			// 不在待审核状态：空列表，跳过且不算错误
			fmt.Fprint(w, listJSON())
		case "o3":
			fmt.Fprint(w, listJSON(pkgJSON("o3", "p1"))) // 与 o1 同包裹
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, 300)
	ids, err := client.ResolvePackages(context.Background(), []string{"o1", "o2", "o3", "o-boom", ""})
	require.NoError(t, err)
	// o2 不在待审核、o-boom 查询失败都只跳过；o1/o3 的同包裹去重
	assert.Equal(t, []string{"p1"}, ids)
}

func TestPackageIDPrefersIDStr(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只有数值 id：退化为数值字符串
		fmt.Fprint(w, `{"data":{"page":{"list":[{"orderId":"o1","id":9007199254740993}]}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, 5)
	ids, err := client.AllPendingPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"9007199254740993"}, ids)
}
