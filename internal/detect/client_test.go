package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("image")
		require.NoError(t, err)
		f.Close()

		json.NewEncoder(w).Encode(predictResponse{Predictions: []Detection{
			{Class: "coffee leaf rust", Confidence: 0.9, Box: Box{X1: 1, Y1: 2, X2: 30, Y2: 40}},
			{Class: "phoma", Confidence: 0.1, Box: Box{X1: 5, Y1: 5, X2: 10, Y2: 10}},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0.25, 5*time.Second)
	dets, err := c.Detect(context.Background(), []byte("fake image bytes"))
	require.NoError(t, err)

	// 低于置信度阈值的被丢弃
	require.Len(t, dets, 1)
	assert.Equal(t, "coffee leaf rust", dets[0].Class)
	assert.InDelta(t, 0.9, dets[0].Confidence, 1e-9)
}

func TestClientDetectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0.25, 5*time.Second)
	_, err := c.Detect(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestClientDetectUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 0.25, time.Second)
	_, err := c.Detect(context.Background(), []byte("img"))
	require.Error(t, err)
}

func TestUniqueClasses(t *testing.T) {
	dets := []Detection{
		{Class: "rust"},
		{Class: "leaf spot"},
		{Class: "rust"},
		{Class: "phoma"},
	}
	assert.Equal(t, []string{"rust", "leaf spot", "phoma"}, UniqueClasses(dets))
	assert.Nil(t, UniqueClasses(nil))
}

func TestMock(t *testing.T) {
	m := DefaultMock()
	dets, err := m.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, dets, 2)
}
