package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opa/cartsync/internal/mapping"
	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/logger"
)

func newTestSubmitter(client *Client, live bool) *Submitter {
	return NewSubmitter(client, live, PurchaseWholesale,
		time.Millisecond, 2*time.Millisecond, logger.Nop{})
}

func validRow(sku string) *Row {
	return &Row{
		SKU:      sku,
		Quantity: "2",
		Link:     "https://detail.1688.com/offer/7788990011.html",
		SpecID:   "spec-1",
	}
}

func TestSubmitDryRun(t *testing.T) {
	// live=false：client 为 nil 也不会被触碰
	s := newTestSubmitter(nil, false)
	row := validRow("A-1")

	stats := s.Run(context.Background(), []*Row{row})

	assert.Equal(t, Stats{DryRun: 1}, stats)
	assert.Equal(t, StatusDryRun, row.Status)
	assert.Equal(t, remarkDryRun, row.Remark)
}

func TestSubmitValidationRules(t *testing.T) {
	s := newTestSubmitter(nil, false)

	prep := validRow("PREP")
	prep.Link = "备货"
	unmapped := validRow("GHOST")
	unmapped.Link = mapping.UnmappedLink
	noSpec := validRow("NOSPEC")
	noSpec.SpecID = ""
	badQty := validRow("BADQTY")
	badQty.Quantity = "abc"
	noOffer := validRow("NOOFFER")
	noOffer.Link = "https://example.com/not-an-offer"
	done := validRow("DONE")
	done.Status = StatusSuccess

	rows := []*Row{prep, unmapped, noSpec, badQty, noOffer, done}
	stats := s.Run(context.Background(), rows)

	assert.Equal(t, Stats{Skipped: 1, Failed: 5}, stats)
	assert.Equal(t, FailStockPrep, prep.Reason)
	assert.Equal(t, remarkStockPrep, prep.Remark)
	assert.Equal(t, FailUnmapped, unmapped.Reason)
	assert.Equal(t, FailMissingSpec, noSpec.Reason)
	assert.Equal(t, FailBadQuantity, badQty.Reason)
	assert.Equal(t, FailNoOfferID, noOffer.Reason)
	assert.Equal(t, StatusSuccess, done.Status, "历史成功行原样保留")
}

func TestSubmitRuleOrder(t *testing.T) {
	s := newTestSubmitter(nil, false)

	// 备货标记与空规格同时存在：备货规则先命中
	row := validRow("X")
	row.ProductID = "備貨"
	row.SpecID = ""
	s.Run(context.Background(), []*Row{row})
	assert.Equal(t, FailStockPrep, row.Reason)

	// 空规格与坏数量同时存在：空规格先命中
	row = validRow("Y")
	row.SpecID = ""
	row.Quantity = "abc"
	s.Run(context.Background(), []*Row{row})
	assert.Equal(t, FailMissingSpec, row.Reason)
}

// cartServer 模拟加购接口：按 cargoIdentity 决定成败，并记录调用
func cartServer(t *testing.T, calls *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		offerID := r.PostForm.Get("cargoIdentity")
		*calls = append(*calls, offerID)

		assert.Equal(t, "offer", r.PostForm.Get("type"))
		assert.Equal(t, "url", r.PostForm.Get("returnType"))
		assert.NotEmpty(t, r.PostForm.Get("t"))

		var specs []specEntry
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("specData")), &specs))
		require.Len(t, specs, 1)

		if offerID == "666" {
			fmt.Fprint(w, `{"success":false,"message":"库存不足"}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":{"cartUrl":"https://cart.1688.com/cart.htm"}}`)
	}))
}

func newCartClient(serverURL string) *Client {
	return NewClient(Options{
		CartURL:   serverURL + "/cart",
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
	}, &credential.Credential{Name: "1688", Cookie: "c=1"}, logger.Nop{})
}

func TestSubmitLiveEndToEnd(t *testing.T) {
	var calls []string
	server := cartServer(t, &calls)
	defer server.Close()

	s := newTestSubmitter(newCartClient(server.URL), true)

	okRow := validRow("OK-1")
	rejected := validRow("REJ-1")
	rejected.Link = "https://detail.1688.com/offer/666.html"
	done := validRow("DONE-1")
	done.Status = StatusSuccess
	unmapped := validRow("GHOST-1")
	unmapped.Link = mapping.UnmappedLink

	rows := []*Row{okRow, rejected, done, unmapped}
	stats := s.Run(context.Background(), rows)

	assert.Equal(t, Stats{Success: 1, Failed: 2, Skipped: 1}, stats)

	assert.Equal(t, StatusSuccess, okRow.Status)
	assert.Equal(t, remarkSuccess, okRow.Remark)

	assert.Equal(t, StatusFailed, rejected.Status)
	assert.Equal(t, FailResponse, rejected.Reason)
	assert.Contains(t, rejected.Remark, "库存不足")

	// 历史成功行与本地失败行都不产生远程调用
	assert.Equal(t, []string{"7788990011", "666"}, calls)
}

func TestSubmitTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关掉：连接必然失败

	s := newTestSubmitter(newCartClient(server.URL), true)
	row := validRow("A-1")
	stats := s.Run(context.Background(), []*Row{row})

	assert.Equal(t, Stats{Failed: 1}, stats)
	assert.Equal(t, FailTransport, row.Reason)
	assert.Contains(t, row.Remark, "请求异常")
}

func TestSubmitNon200IsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success":true}`)
	}))
	defer server.Close()

	s := newTestSubmitter(newCartClient(server.URL), true)
	row := validRow("A-1")
	s.Run(context.Background(), []*Row{row})

	// 非 200 即失败，响应体里的 success 不作数
	assert.Equal(t, StatusFailed, row.Status)
	assert.Equal(t, FailResponse, row.Reason)
}

func TestSortRows(t *testing.T) {
	mk := func(sku string, status Status, reason FailReason) *Row {
		return &Row{SKU: sku, Status: status, Reason: reason}
	}
	rows := []*Row{
		mk("prep", StatusFailed, FailStockPrep),
		mk("ok-1", StatusSuccess, FailNone),
		mk("dry", StatusDryRun, FailNone),
		mk("nospec-1", StatusFailed, FailMissingSpec),
		mk("badqty", StatusFailed, FailBadQuantity),
		mk("nospec-2", StatusFailed, FailMissingSpec),
		mk("ok-2", StatusSuccess, FailNone),
	}

	SortRows(rows)

	order := make([]string, len(rows))
	for i, r := range rows {
		order[i] = r.SKU
	}
	// 空规格失败最前，其它失败次之，DRY_RUN 居中，成功靠后，备货垫底
	// 同桶保持原相对顺序（nospec-1 在 nospec-2 前，ok-1 在 ok-2 前）
	assert.Equal(t, []string{"nospec-1", "nospec-2", "badqty", "dry", "ok-1", "ok-2", "prep"}, order)
}

func TestPreviewTruncatesAndFlattens(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "错" // 多字节字符，截断必须按 rune
	}
	out := preview(long + "\nsecond line")
	assert.LessOrEqual(t, len([]rune(out)), previewLen)

	assert.Equal(t, "a b", preview(" a\nb "))
}
