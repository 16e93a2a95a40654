package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPDFMissingFile(t *testing.T) {
	_, _, err := ExtractPDF(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat pdf")
}

func TestExtractPDFNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	_, _, err := ExtractPDF(path)
	require.Error(t, err)
}

func TestExtractPDFSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	// 稀疏文件，只占元数据不占磁盘
	require.NoError(t, f.Truncate(MaxPDFSize+1))
	require.NoError(t, f.Close())

	_, _, err = ExtractPDF(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size limit")
}
