package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Client 调用外部 YOLO 推理服务。图片以 multipart 上传到 <url>/predict，
// 服务返回 JSON 预测列表。
type Client struct {
	url           string
	confThreshold float64
	httpClient    *http.Client
}

type predictResponse struct {
	Predictions []Detection `json:"predictions"`
}

func NewClient(url string, confThreshold float64, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:           url,
		confThreshold: confThreshold,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Detect(ctx context.Context, img []byte) ([]Detection, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "leaf.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(img); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/predict", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call detector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode detector response: %w", err)
	}

	var dets []Detection
	for _, d := range out.Predictions {
		if d.Confidence < c.confThreshold {
			continue
		}
		dets = append(dets, d)
	}
	slog.Debug("detector response", "raw", len(out.Predictions), "kept", len(dets))
	return dets, nil
}
