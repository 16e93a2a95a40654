package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/liao/coffee-assistant/internal/ai"
)

// LLM 生成接口，由 ai.Client 实现
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Pipeline struct {
	store         *Store
	llm           LLM
	topK          int
	minSimilarity float32
}

func NewPipeline(store *Store, llm LLM, topK int, minSimilarity float32) *Pipeline {
	return &Pipeline{
		store:         store,
		llm:           llm,
		topK:          topK,
		minSimilarity: minSimilarity,
	}
}

// Retrieve 检索与问题相关的知识块。带历史时先把追问改写成独立问题，
// 改写失败就用原问题检索。
func (p *Pipeline) Retrieve(ctx context.Context, question string, history []string) ([]string, error) {
	if p.store == nil || p.store.Count() == 0 {
		slog.Debug("no vectors in store, skipping retrieval")
		return nil, nil
	}

	query := question
	if len(history) > 0 {
		standalone, err := p.llm.Generate(ctx, ai.CondensePrompt(history, question))
		if err != nil {
			slog.Warn("condense question failed, using raw question", "error", err)
		} else if s := strings.TrimSpace(standalone); s != "" {
			query = s
			slog.Debug("condensed follow-up question", "standalone", query)
		}
	}

	results, err := p.store.Query(ctx, query, p.topK, p.minSimilarity)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Content)
	}

	slog.Debug("retrieved knowledge chunks", "query", query, "count", len(chunks))
	return chunks, nil
}
