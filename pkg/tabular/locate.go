package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocateStatus 查找结果状态
type LocateStatus int

const (
	// LocateFound 找到可处理的工作簿
	LocateFound LocateStatus = iota
	// LocateEmpty 目录存在但无可处理文件，属于"无事可做"而非错误
	LocateEmpty
)

// LocateResult 工作簿查找结果（区分 Found / Empty，错误单独返回）
type LocateResult struct {
	Status LocateStatus
	Path   string
}

// LocateOptions 查找选项
type LocateOptions struct {
	SkipDone  bool // 跳过文件名含 "(done)" 的结果表
	CreateDir bool // 目录不存在时自动创建
}

// Locate 在目录中查找最新修改的 .xlsx 工作簿
// Excel 的 ~$ 临时锁文件始终跳过
func Locate(dir string, opts LocateOptions) (LocateResult, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if !opts.CreateDir {
			return LocateResult{}, fmt.Errorf("directory not found: %s", dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return LocateResult{}, fmt.Errorf("create directory failed: %w", err)
		}
		return LocateResult{Status: LocateEmpty}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return LocateResult{}, fmt.Errorf("read directory failed: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			continue
		}
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if opts.SkipDone && strings.Contains(name, "(done)") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, name)
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return LocateResult{Status: LocateEmpty}, nil
	}
	return LocateResult{Status: LocateFound, Path: latest}, nil
}

// ArchiveMove 将文件移动到归档目录
// 目标已存在同名文件时追加时间戳后缀避免覆盖；返回最终落盘路径
func ArchiveMove(src, destDir string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("source not found: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir failed: %w", err)
	}

	name := filepath.Base(src)
	dst := filepath.Join(destDir, name)
	if _, err := os.Stat(dst); err == nil {
		ts := time.Now().Format("20060102_150405")
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		dst = filepath.Join(destDir, fmt.Sprintf("%s_%s%s", base, ts, ext))
	}

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move to archive failed: %w", err)
	}
	return dst, nil
}

// RemoveWithin 删除文件，且仅当文件位于 allowedDir 内时才执行
// 返回是否删除成功；越界或失败只返回 false，不向上抛错
func RemoveWithin(path, allowedDir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(allowedDir)
	if err != nil {
		return false
	}
	if filepath.Dir(absPath) != absDir {
		return false
	}
	return os.Remove(absPath) == nil
}
