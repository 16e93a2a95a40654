package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philippgille/chromem-go"

	"github.com/liao/coffee-assistant/internal/kb"
)

type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore 打开 kb-builder 持久化的向量库
func NewStore(vectorsDir string, embedFunc chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(vectorsDir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	col, err := db.GetOrCreateCollection(kb.CollectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("get/create collection: %w", err)
	}

	slog.Info("vector store loaded", "dir", vectorsDir, "count", col.Count())
	return &Store{db: db, collection: col}, nil
}

// NewStoreFromCollection 直接包装已有集合，测试用
func NewStoreFromCollection(col *chromem.Collection) *Store {
	return &Store{collection: col}
}

// Query 检索最相似的知识块
func (s *Store) Query(ctx context.Context, text string, topK int, minSimilarity float32) ([]Result, error) {
	if s.collection.Count() == 0 {
		return nil, nil
	}

	k := topK
	if k > s.collection.Count() {
		k = s.collection.Count()
	}

	docs, err := s.collection.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	var results []Result
	for _, d := range docs {
		if d.Similarity < minSimilarity {
			continue
		}
		results = append(results, Result{
			Content:    d.Content,
			Similarity: d.Similarity,
			Metadata:   d.Metadata,
		})
	}
	return results, nil
}

// Count 返回知识块数量
func (s *Store) Count() int {
	return s.collection.Count()
}

type Result struct {
	Content    string
	Similarity float32
	Metadata   map[string]string
}
