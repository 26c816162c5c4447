package dxm

import "encoding/json"

// listResponse list.json 响应
type listResponse struct {
	Data struct {
		Page struct {
			List []packageRow `json:"list"`
		} `json:"page"`
	} `json:"data"`
}

// packageRow 列表页单行：订单号 + 包裹标识
type packageRow struct {
	OrderID string      `json:"orderId"`
	IDStr   string      `json:"idStr"`
	ID      json.Number `json:"id"`
}

// PackageID 返回包裹标识，优先 idStr（避免 JS 大整数精度问题的字符串形式）
func (r packageRow) PackageID() string {
	if r.IDStr != "" {
		return r.IDStr
	}
	return r.ID.String()
}

// exportResponse exportPickData.json 响应
type exportResponse struct {
	UUID string `json:"uuid"`
}

// processResponse checkProcess.json 响应
type processResponse struct {
	ProcessMsg processMsg `json:"processMsg"`
}

// processMsg 导出任务进度
type processMsg struct {
	Code     int    `json:"code"`
	Msg      string `json:"msg"`
	Num      int    `json:"num"`
	TotalNum int    `json:"totalNum"`
}

// auditResponse batchAudit.json 响应，code 0 为成功
type auditResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
