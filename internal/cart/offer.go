package cart

import (
	"regexp"
	"strings"
)

var (
	offerPathRe  = regexp.MustCompile(`/offer/(\d+)\.html`)
	offerQueryRe = regexp.MustCompile(`offerId=(\d+)`)
)

// ExtractOfferID 从商品链接中提取 offerId（cargoIdentity）
// 先匹配 /offer/<id>.html 路径形式，再匹配 offerId=<id> 查询参数形式
// 都不匹配返回空串
func ExtractOfferID(link string) string {
	s := strings.TrimSpace(link)
	if s == "" {
		return ""
	}
	if m := offerPathRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := offerQueryRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
