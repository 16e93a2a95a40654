package kb

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dslipak/pdf"
)

// MaxPDFSize 文本提取的硬上限
const MaxPDFSize = 50 * 1024 * 1024

// ExtractPDF 逐页提取 PDF 文本，失败的页跳过
func ExtractPDF(path string) (string, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat pdf: %w", err)
	}
	if info.Size() > MaxPDFSize {
		return "", 0, fmt.Errorf("pdf exceeds size limit of 50MB")
	}

	r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	totalPages := r.NumPage()
	var b strings.Builder
	extracted := 0
	for i := 1; i <= totalPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			slog.Warn("page extraction failed, skipping", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
		extracted++
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("no extractable text in %s", path)
	}
	return text, extracted, nil
}
