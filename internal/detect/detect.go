// Package detect 封装外部目标检测模型：图片进，病害类别和标注图出。
package detect

import "context"

type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

type Detector interface {
	Detect(ctx context.Context, img []byte) ([]Detection, error)
}

// UniqueClasses 去重，保留首次出现的顺序
func UniqueClasses(dets []Detection) []string {
	seen := map[string]bool{}
	var classes []string
	for _, d := range dets {
		if seen[d.Class] {
			continue
		}
		seen[d.Class] = true
		classes = append(classes, d.Class)
	}
	return classes
}
