package dxm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	ids := make([]string, 7)
	for i := range ids {
		ids[i] = fmt.Sprintf("pkg-%d", i)
	}

	chunks := Chunk(ids, 3)
	assert.Len(t, chunks, 3)
	assert.Equal(t, []string{"pkg-0", "pkg-1", "pkg-2"}, chunks[0])
	assert.Equal(t, []string{"pkg-3", "pkg-4", "pkg-5"}, chunks[1])
	assert.Equal(t, []string{"pkg-6"}, chunks[2])
}

func TestChunkExactMultiple(t *testing.T) {
	chunks := Chunk([]string{"a", "b", "c", "d"}, 2)
	assert.Len(t, chunks, 2)
	assert.Equal(t, []string{"c", "d"}, chunks[1])
}

func TestChunkEmptyAndZeroSize(t *testing.T) {
	assert.Nil(t, Chunk(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}}, Chunk([]string{"a", "b"}, 0))
}

func TestDedup(t *testing.T) {
	out := Dedup([]string{"a", "b", "a", "", "c", "b"})
	assert.Equal(t, []string{"a", "b", "c"}, out)
}
