package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, `
gemini:
  api_key: test-key
detector:
  mode: mock
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"gemini-2.5-flash"}, cfg.Gemini.ChatModels)
	assert.Equal(t, "gemini-embedding-001", cfg.Gemini.EmbeddingModel)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 1000, cfg.KB.ChunkSize)
	assert.Equal(t, 200, cfg.KB.ChunkOverlap)
	assert.Equal(t, 30*time.Second, cfg.Detector.Timeout)
	assert.Equal(t, "mock", cfg.Detector.Mode)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DETECTOR_URL", "http://model-host:5000")
	path := writeConfig(t, `
detector:
  mode: http
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, "http://model-host:5000", cfg.Detector.URL)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, `
detector:
  mode: mock
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.api_key")
}

func TestLoadHTTPDetectorNeedsURL(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("DETECTOR_URL", "")
	path := writeConfig(t, `
detector:
  mode: http
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detector.url")
}

func TestLoadRejectsBadOverlap(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")
	path := writeConfig(t, `
detector:
  mode: mock
kb:
  chunk_size: 100
  chunk_overlap: 100
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
