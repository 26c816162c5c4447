package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	src := &Sheet{
		Columns: []string{"SKU", "数量", "备注"},
		Rows: []Row{
			{"SKU": "A-1", "数量": "2", "备注": "急"},
			{"SKU": "B-1", "数量": "3", "备注": ""},
		},
	}
	require.NoError(t, Write(path, src))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, src.Columns, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "A-1", got.Rows[0]["SKU"])
	assert.Equal(t, "", got.Rows[1]["备注"], "行尾缺失的单元格按空串处理")
}

func TestReadSkipsBlankHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path, &Sheet{
		Columns: []string{"SKU", " ", "数量"},
		Rows:    []Row{{"SKU": "A", " ": "x", "数量": "1"}},
	}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "数量"}, got.Columns)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestFindColumn(t *testing.T) {
	s := &Sheet{Columns: []string{"SKU", "数量（个）"}}
	assert.True(t, s.HasColumn("SKU"))
	assert.False(t, s.HasColumn("数量"))

	col := s.FindColumn(func(c string) bool { return c == "数量（个）" })
	assert.Equal(t, "数量（个）", col)
	assert.Equal(t, "", s.FindColumn(func(string) bool { return false }))
}
