package scrape

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ExtractObject 在原始文本中找到 key 之后的第一个配平的对象字面量
// 只做括号深度 + 字符串/转义状态扫描，不解析整篇文档；找不到返回 ""
func ExtractObject(text, key string) string {
	idx := strings.Index(text, key)
	if idx < 0 {
		return ""
	}

	start := strings.IndexByte(text[idx:], '{')
	if start < 0 {
		return ""
	}
	start += idx

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// SKURecord 页面中解析出的单个可购规格
type SKURecord struct {
	SkuID       string
	SpecID      string
	VariantAttr string // 属性值用 "-" 连接，如 "黑色-M"
}

// skuModel 页面内嵌对象的相关字段
type skuModel struct {
	SkuInfoMap map[string]skuInfo `json:"skuInfoMap"`
}

type skuInfo struct {
	SkuID     json.Number     `json:"skuId"`
	ID        json.Number     `json:"id"`
	SpecID    string          `json:"specId"`
	SpecIDStr string          `json:"specIdStr"`
	SpecAttrs json.RawMessage `json:"specAttrs"`
}

type specAttr struct {
	Value string `json:"value"`
}

var companyNameRe = regexp.MustCompile(`"companyName"\s*:\s*"([^"\\]+)"`)

// ParseSKUModel 从商品页 HTML 中解析规格数据与店铺名
// 页面没有 skuModel 或其内容无法解析时返回空集，不报错
func ParseSKUModel(html string) ([]SKURecord, string) {
	objStr := ExtractObject(html, "skuModel")
	if objStr == "" {
		return nil, ""
	}

	var parsed skuModel
	if err := json.Unmarshal([]byte(objStr), &parsed); err != nil {
		return nil, ""
	}

	records := make([]SKURecord, 0, len(parsed.SkuInfoMap))
	for _, v := range parsed.SkuInfoMap {
		skuID := v.SkuID.String()
		if skuID == "" {
			skuID = v.ID.String()
		}
		specID := v.SpecID
		if specID == "" {
			specID = v.SpecIDStr
		}
		records = append(records, SKURecord{
			SkuID:       skuID,
			SpecID:      specID,
			VariantAttr: joinSpecAttrs(v.SpecAttrs),
		})
	}

	shopName := ""
	if m := companyNameRe.FindStringSubmatch(html); m != nil {
		shopName = m[1]
	}

	return records, shopName
}

// joinSpecAttrs 连接属性值
// specAttrs 既可能是对象数组也可能已经是 "黑色-M" 这类字符串
func joinSpecAttrs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var attrs []specAttr
	if err := json.Unmarshal(raw, &attrs); err == nil {
		values := make([]string, 0, len(attrs))
		for _, a := range attrs {
			if v := strings.TrimSpace(a.Value); v != "" {
				values = append(values, v)
			}
		}
		return strings.Join(values, "-")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
