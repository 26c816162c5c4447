package credential

import (
	"os"
	"strings"

	"opa/cartsync/pkg/errorutil"
)

// Credential 单个平台的登录凭证（整行浏览器 Cookie）
// 每次运行构造一次，显式传递，不做进程级缓存
type Credential struct {
	Name   string // 平台名（日志用）
	Cookie string
}

// Load 按固定顺序获取凭证：
//  1. 环境变量 envKey
//  2. filePath 指向的文本文件
//  3. 两者都没有 → 环境错误
func Load(name, envKey, filePath string) (*Credential, error) {
	if envKey != "" {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			return &Credential{Name: name, Cookie: v}, nil
		}
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				return &Credential{Name: name, Cookie: v}, nil
			}
		}
	}

	return nil, errorutil.Environment(
		"未找到 %s Cookie：请设置环境变量 %s，或在 %s 放置 Cookie 文本文件",
		name, envKey, filePath)
}
