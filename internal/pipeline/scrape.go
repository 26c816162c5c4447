package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opa/cartsync/internal/scrape"
	"opa/cartsync/pkg/credential"
	"opa/cartsync/pkg/errorutil"
	"opa/cartsync/pkg/tabular"
)

// RunScrape 抓取模式：读取链接清单，抓取每个商品页的规格数据，写出结果表
// 结果用于人工补全映射表，单个链接失败不影响整批
func (p *Pipeline) RunScrape(ctx context.Context, linksPath string) error {
	links, err := readLinks(linksPath)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		p.logger.Infof(ctx, "[Pipeline] No links in %s, nothing to scrape", linksPath)
		return nil
	}
	p.logger.Infof(ctx, "[Pipeline] %d links to scrape", len(links))

	cred, err := credential.Load("1688", p.cfg.Ali.CookieEnv, p.cfg.Ali.CookiePath)
	if err != nil {
		return err
	}
	scraper := scrape.NewScraper(scrape.Options{
		UserAgent: p.cfg.HTTP.UserAgent,
		Timeout:   p.cfg.HTTP.Timeout,
	}, cred, p.logger)

	sheet, failed := scraper.ScrapeAll(ctx, links)
	if len(sheet.Rows) == 0 {
		return errorutil.Protocol("no SKU data scraped from %d links", len(links))
	}

	if err := os.MkdirAll(p.cfg.Paths.ScrapeDir, 0o755); err != nil {
		return errorutil.Environment("create scrape dir failed: %v", err)
	}
	outPath := filepath.Join(p.cfg.Paths.ScrapeDir,
		fmt.Sprintf("pasted_links_%s(done).xlsx", time.Now().Format("20060102_150405")))
	if err := tabular.Write(outPath, sheet); err != nil {
		return err
	}

	p.logger.Infof(ctx, "[Pipeline] Scrape result written: %s (%d rows, %d links failed)",
		outPath, len(sheet.Rows), len(failed))
	for _, link := range failed {
		p.logger.Warnf(ctx, "[Pipeline] Scrape failed: %s", link)
	}
	return nil
}

// readLinks 读取链接清单文件：每行一个链接，空行跳过，按首次出现去重
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorutil.Environment("open links file failed: %v", err)
	}
	defer f.Close()

	links := make([]string, 0)
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errorutil.Environment("read links file failed: %v", err)
	}
	return links, nil
}
