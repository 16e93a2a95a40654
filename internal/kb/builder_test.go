package kb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMissingPDF(t *testing.T) {
	b := NewBuilder(NewSplitter(100, 10), nil, 5)
	_, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), t.TempDir())
	require.Error(t, err)
}

func TestTruncateChunk(t *testing.T) {
	assert.Equal(t, "short", truncateChunk("short", 10))
	assert.Equal(t, "abc", truncateChunk("abcdef", 3))

	// 截断点落在多字节字符中间时要回退到字符边界
	s := strings.Repeat("咖", 10) // 30 字节
	got := truncateChunk(s, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("咖", 3), got)
	assert.LessOrEqual(t, len(got), 10)
}

func TestReportString(t *testing.T) {
	r := Report{Pages: 12, Chunks: 80, Vectors: 78, OutDir: "data/vectors"}
	s := r.String()
	assert.Contains(t, s, "Pages:   12")
	assert.Contains(t, s, "Vectors: 78")
	assert.Contains(t, s, "data/vectors")
}
