package detect

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnnotateDrawsBox(t *testing.T) {
	src := testPNG(t, 100, 100)
	dets := []Detection{
		{Class: "rust", Confidence: 0.9, Box: Box{X1: 10, Y1: 10, X2: 60, Y2: 60}},
	}

	out, err := Annotate(src, dets)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	// 框的上边缘不再是白色
	r, g, b, _ := decoded.At(30, 11).RGBA()
	assert.False(t, r>>8 == 255 && g>>8 == 255 && b>>8 == 255, "expected box edge to be drawn")

	// 框内部保持原样
	r, g, b, _ = decoded.At(30, 30).RGBA()
	assert.True(t, r>>8 == 255 && g>>8 == 255 && b>>8 == 255, "expected interior untouched")
}

func TestAnnotateClampsOutOfBoundsBox(t *testing.T) {
	src := testPNG(t, 50, 50)
	dets := []Detection{
		{Class: "rust", Box: Box{X1: -20, Y1: -20, X2: 500, Y2: 500}},
	}

	out, err := Annotate(src, dets)
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), decoded.Bounds())
}

func TestAnnotateRejectsGarbage(t *testing.T) {
	_, err := Annotate([]byte("definitely not an image"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode image")
}
