package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOfferID(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://detail.1688.com/offer/7788990011.html", "7788990011"},
		{"https://detail.1688.com/offer/7788990011.html?spm=a26zs", "7788990011"},
		{"https://m.1688.com/page?offerId=123456", "123456"},
		// 路径形式优先于查询参数形式
		{"https://detail.1688.com/offer/111.html?offerId=222", "111"},
		{"  https://detail.1688.com/offer/333.html  ", "333"},
		{"https://detail.1688.com/offer/abc.html", ""},
		{"NO MAPPING SKU", ""},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ExtractOfferID(c.link), "link=%q", c.link)
	}
}
