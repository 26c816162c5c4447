package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	text := `var cfg = {"skuModel":{"a":{"b":"}"},"c":[1,2]},"other":1};`
	obj := ExtractObject(text, "skuModel")
	assert.Equal(t, `{"a":{"b":"}"},"c":[1,2]}`, obj, "字符串里的花括号不参与配平")
}

func TestExtractObjectEscapedQuote(t *testing.T) {
	text := `"skuModel":{"name":"say \"hi\" {x}"}`
	assert.Equal(t, `{"name":"say \"hi\" {x}"}`, ExtractObject(text, "skuModel"))
}

func TestExtractObjectMissing(t *testing.T) {
	assert.Equal(t, "", ExtractObject("no such key here", "skuModel"))
	assert.Equal(t, "", ExtractObject(`"skuModel": [1,2]`, "skuModel"), "key 后面没有对象字面量")
	assert.Equal(t, "", ExtractObject(`"skuModel":{"unbalanced":1`, "skuModel"), "未配平返回空")
}

func TestParseSKUModel(t *testing.T) {
	html := `<script>window.__INIT_DATA={"skuModel":{"skuInfoMap":{` +
		`"黑色&gt;M":{"skuId":1111,"specId":"sp-aa","specAttrs":[{"value":"黑色"},{"value":"M"}]},` +
		`"白色&gt;L":{"skuId":2222,"specId":"sp-bb","specAttrs":[{"value":"白色"},{"value":"L"}]}}},` +
		`"sellerModel":{"companyName":"义乌某某电商"}}</script>`

	records, shop := ParseSKUModel(html)
	require.Len(t, records, 2)
	assert.Equal(t, "义乌某某电商", shop)

	bySpec := make(map[string]SKURecord)
	for _, r := range records {
		bySpec[r.SpecID] = r
	}
	assert.Equal(t, "1111", bySpec["sp-aa"].SkuID)
	assert.Equal(t, "黑色-M", bySpec["sp-aa"].VariantAttr)
	assert.Equal(t, "白色-L", bySpec["sp-bb"].VariantAttr)
}

func TestParseSKUModelFallbackFields(t *testing.T) {
	// 老版页面：id / specIdStr / 字符串形式的 specAttrs
	html := `{"skuModel":{"skuInfoMap":{"k":{"id":333,"specIdStr":"sp-cc","specAttrs":"红色-XL"}}}}`

	records, shop := ParseSKUModel(html)
	require.Len(t, records, 1)
	assert.Equal(t, "", shop)
	assert.Equal(t, "333", records[0].SkuID)
	assert.Equal(t, "sp-cc", records[0].SpecID)
	assert.Equal(t, "红色-XL", records[0].VariantAttr)
}

func TestParseSKUModelNoModel(t *testing.T) {
	records, shop := ParseSKUModel("<html>plain page</html>")
	assert.Nil(t, records)
	assert.Equal(t, "", shop)
}
