package kb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/philippgille/chromem-go"
)

// CollectionName 知识库向量集合名
const CollectionName = "knowledge"

// 过短的块没有检索价值；过长的块在嵌入前截断
const (
	minChunkLen = 10
	maxChunkLen = 2000
)

type Builder struct {
	splitter  *Splitter
	embedFunc chromem.EmbeddingFunc
	batchSize int
}

type Report struct {
	Pages   int
	Chunks  int
	Vectors int
	OutDir  string
}

func (r Report) String() string {
	return fmt.Sprintf(`Build Report
============
Pages:   %d
Chunks:  %d
Vectors: %d
Output:  %s
`, r.Pages, r.Chunks, r.Vectors, r.OutDir)
}

func NewBuilder(splitter *Splitter, embedFunc chromem.EmbeddingFunc, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Builder{splitter: splitter, embedFunc: embedFunc, batchSize: batchSize}
}

// Build 提取 PDF 文本、切块、嵌入并持久化到向量库。
// 每批写入后记录 .progress 检查点，中断后重跑会从检查点续传。
func (b *Builder) Build(ctx context.Context, pdfPath, outDir string) (Report, error) {
	slog.Info("reading pdf", "path", pdfPath)
	text, pages, err := ExtractPDF(pdfPath)
	if err != nil {
		return Report{}, err
	}

	slog.Info("splitting document into chunks", "pages", pages)
	chunks := b.splitter.Split(text)
	if len(chunks) == 0 {
		return Report{}, fmt.Errorf("document produced no chunks")
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Report{}, fmt.Errorf("create output dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(outDir, false)
	if err != nil {
		return Report{}, fmt.Errorf("create vector db: %w", err)
	}
	col, err := db.GetOrCreateCollection(CollectionName, nil, b.embedFunc)
	if err != nil {
		return Report{}, fmt.Errorf("create collection: %w", err)
	}

	// 断点续传
	progressFile := filepath.Join(outDir, ".progress")
	startFrom := 0
	if data, err := os.ReadFile(progressFile); err == nil {
		fmt.Sscanf(string(data), "%d", &startFrom)
		slog.Info("resuming from checkpoint", "start", startFrom)
	}

	source := filepath.Base(pdfPath)
	var docs []chromem.Document
	for i, chunk := range chunks {
		if i < startFrom {
			continue
		}
		chunk = strings.TrimSpace(chunk)
		if len(chunk) < minChunkLen {
			continue
		}
		chunk = truncateChunk(chunk, maxChunkLen)

		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("chunk_%05d", i),
			Content: chunk,
			Metadata: map[string]string{
				"source": source,
			},
		})

		if len(docs) >= b.batchSize {
			slog.Info("embedding chunks", "progress", fmt.Sprintf("%d/%d", i+1, len(chunks)))
			if err := col.AddDocuments(ctx, docs, 1); err != nil {
				return Report{}, fmt.Errorf("add documents batch at %d: %w", i, err)
			}
			docs = docs[:0]
			os.WriteFile(progressFile, []byte(fmt.Sprintf("%d", i+1)), 0644)
			time.Sleep(500 * time.Millisecond)
		}
	}

	if len(docs) > 0 {
		slog.Info("embedding final batch", "count", len(docs))
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return Report{}, fmt.Errorf("add final documents: %w", err)
		}
	}

	os.Remove(progressFile)

	slog.Info("vector store saved", "dir", outDir, "vectors", col.Count())
	return Report{Pages: pages, Chunks: len(chunks), Vectors: col.Count(), OutDir: outDir}, nil
}

// truncateChunk 在不超过 max 字节的前提下按字符边界截断，
// 避免把多字节字符切成无效的 UTF-8 送进嵌入接口
func truncateChunk(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
