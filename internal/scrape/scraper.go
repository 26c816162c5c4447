package scrape

import (
	"context"
	"io"
	"net/http"
	"time"

	"opa/cartsync/internal/cart"
	"opa/cartsync/internal/model"
	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/httpx"
	"opa/cartsync/pkg/logger"
	"opa/cartsync/pkg/tabular"
)

// Options 抓取参数
type Options struct {
	UserAgent string
	Timeout   time.Duration
}

// Scraper 商品详情抓取器
// 抓取商品页并解析内嵌规格数据，供人工维护映射表使用
type Scraper struct {
	session *httpx.Session
	logger  logger.Logger
}

// NewScraper 创建抓取器
func NewScraper(opts Options, cred *credential.Credential, log logger.Logger) *Scraper {
	headers := map[string]string{
		"User-Agent":      opts.UserAgent,
		"Accept":          "*/*",
		"Accept-Language": "zh-CN,zh;q=0.9,en-US;q=0.8",
		"Cookie":          cred.Cookie,
	}
	return &Scraper{
		session: httpx.NewSession(opts.Timeout, headers),
		logger:  log,
	}
}

// outputColumns 抓取结果表固定列序
var outputColumns = []string{
	model.ColLink,
	model.ColProductID,
	model.ColVariantAttr,
	model.ColSkuID,
	model.ColSpecID,
	model.ColShopName,
}

// ScrapeOne 抓取单个商品链接，每个可购规格产出一行
// 任何失败都只让该链接产出空集，不中断整批
func (s *Scraper) ScrapeOne(ctx context.Context, link string) []tabular.Row {
	offerID := cart.ExtractOfferID(link)
	if offerID == "" {
		s.logger.Warnf(ctx, "[Scrape] Cannot extract offer id from %s", link)
		return nil
	}

	s.logger.Infof(ctx, "[Scrape] Fetching %s (offerId=%s)", link, offerID)

	resp, err := s.session.Get(ctx, link, map[string]string{"Referer": link})
	if err != nil {
		s.logger.Warnf(ctx, "[Scrape] Request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warnf(ctx, "[Scrape] HTTP %d for %s", resp.StatusCode, link)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Warnf(ctx, "[Scrape] Read body failed: %v", err)
		return nil
	}

	records, shopName := ParseSKUModel(string(body))
	if len(records) == 0 {
		s.logger.Warnf(ctx, "[Scrape] No SKU records parsed from %s", link)
		return nil
	}

	s.logger.Infof(ctx, "[Scrape] Parsed %d SKU records, shop=%s", len(records), shopName)

	rows := make([]tabular.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, tabular.Row{
			model.ColLink:        link,
			model.ColProductID:   offerID,
			model.ColVariantAttr: rec.VariantAttr,
			model.ColSkuID:       rec.SkuID,
			model.ColSpecID:      rec.SpecID,
			model.ColShopName:    shopName,
		})
	}
	return rows
}

// ScrapeAll 依次抓取所有链接，返回聚合行集与失败链接
func (s *Scraper) ScrapeAll(ctx context.Context, links []string) (*tabular.Sheet, []string) {
	sheet := &tabular.Sheet{Columns: append([]string(nil), outputColumns...)}
	failed := make([]string, 0)

	for _, link := range links {
		rows := s.ScrapeOne(ctx, link)
		if len(rows) == 0 {
			failed = append(failed, link)
			continue
		}
		sheet.Rows = append(sheet.Rows, rows...)
	}

	return sheet, failed
}
