package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row 一行数据，列名 → 单元格文本
type Row map[string]string

// Sheet 矩形行集：有序列名 + 若干行
// 所有单元格一律按文本处理，数值解释交给上层
type Sheet struct {
	Columns []string
	Rows    []Row
}

// HasColumn 判断列是否存在（列名做 trim 比较）
func (s *Sheet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if strings.TrimSpace(c) == name {
			return true
		}
	}
	return false
}

// FindColumn 按谓词查找列名，找不到返回 ""
func (s *Sheet) FindColumn(match func(string) bool) string {
	for _, c := range s.Columns {
		if match(c) {
			return c
		}
	}
	return ""
}

// Read 读取工作簿第一个工作表
// 首行为表头；表头为空的列被忽略；行内缺失的单元格按 "" 处理
func Read(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook failed: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows failed: %w", err)
	}
	if len(raw) == 0 {
		return &Sheet{}, nil
	}

	header := raw[0]
	columns := make([]string, 0, len(header))
	colIdx := make([]int, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(Row, len(columns))
		for j, c := range columns {
			idx := colIdx[j]
			if idx < len(cells) {
				row[c] = cells[idx]
			} else {
				row[c] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Sheet{Columns: columns, Rows: rows}, nil
}

// Write 将行集写出为单工作表工作簿（覆盖写）
func Write(path string, sheet *Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)

	header := make([]interface{}, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header failed: %w", err)
	}

	for i, row := range sheet.Rows {
		cells := make([]interface{}, len(sheet.Columns))
		for j, c := range sheet.Columns {
			cells[j] = row[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d failed: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook failed: %w", err)
	}
	return nil
}
