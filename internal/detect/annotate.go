package detect

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
)

const boxThickness = 3

// 每个类别按出现顺序取一种颜色
var palette = []color.RGBA{
	{R: 230, G: 57, B: 70, A: 255},   // red
	{R: 42, G: 157, B: 143, A: 255},  // teal
	{R: 233, G: 196, B: 106, A: 255}, // yellow
	{R: 69, G: 123, B: 157, A: 255},  // blue
	{R: 155, G: 93, B: 229, A: 255},  // purple
}

// Annotate 把检测框画到原图上，按原格式（jpeg/png）重新编码
func Annotate(img []byte, dets []Detection) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	classIdx := map[string]int{}
	for _, d := range dets {
		if _, ok := classIdx[d.Class]; !ok {
			classIdx[d.Class] = len(classIdx)
		}
	}

	for _, d := range dets {
		col := palette[classIdx[d.Class]%len(palette)]
		r := clampRect(d.Box, bounds)
		drawBox(canvas, r, col)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, canvas)
	case "jpeg":
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90})
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

func clampRect(b Box, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
	return r.Intersect(bounds)
}

// drawBox 画四条边
func drawBox(canvas *image.RGBA, r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	t := boxThickness
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(canvas, e.Intersect(canvas.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Src)
	}
}
