package detect

import "context"

// Mock 固定返回预设的检测结果，离线跑通整条链路用
type Mock struct {
	Detections []Detection
	Err        error
}

func (m *Mock) Detect(_ context.Context, _ []byte) ([]Detection, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Detections, nil
}

// DefaultMock 模拟一张同时带锈病和褐斑病的叶片
func DefaultMock() *Mock {
	return &Mock{
		Detections: []Detection{
			{Class: "coffee leaf rust", Confidence: 0.91, Box: Box{X1: 40, Y1: 60, X2: 180, Y2: 200}},
			{Class: "cercospora leaf spot", Confidence: 0.78, Box: Box{X1: 220, Y1: 120, X2: 330, Y2: 240}},
		},
	}
}
