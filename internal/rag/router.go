package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/liao/coffee-assistant/internal/ai"
)

// 答案来源标记，前端据此区分有据回答和通用知识回答
const (
	SourceGeneralKnowledge    = "Generated from general knowledge"
	SourceGeneralAgricultural = "Generated from general agricultural knowledge"
	SourceNoDocs              = "Fallback to LLM (no retrieved docs)"
	SourceUnavailable         = "Generated from general knowledge (system temporarily unavailable)"
	SourceKnowledgeBase       = "Retrieved from knowledge base"
)

const (
	cannedGreeting = "Hello! I'm here to help you with coffee leaf diseases and cultivation questions. How can I assist you today?"
	cannedApology  = "I apologize, but I'm currently experiencing technical difficulties. Please try asking your question again."
)

var greetingPhrases = []string{
	"hi", "hello", "good morning", "good afternoon", "good evening",
	"how are you", "thanks", "thank you",
}

var domainKeywords = []string{
	"coffee", "leaf", "disease", "plant", "crop", "fungus", "pest",
	"treatment", "remedy", "cultivation", "agriculture", "farming",
}

type questionKind int

const (
	kindGreeting questionKind = iota
	kindDomain
	kindOffTopic
)

// classify 问候优先于领域判断；都不命中算跑题
func classify(question string) questionKind {
	q := strings.ToLower(question)
	for _, g := range greetingPhrases {
		if strings.Contains(q, g) {
			return kindGreeting
		}
	}
	for _, kw := range domainKeywords {
		if strings.Contains(q, kw) {
			return kindDomain
		}
	}
	return kindOffTopic
}

// Retriever 由 Pipeline 实现
type Retriever interface {
	Retrieve(ctx context.Context, question string, history []string) ([]string, error)
}

type Answer struct {
	Text     string
	Sources  []string
	Grounded bool
}

// Router 决定一个问题怎么回答：问候和跑题的直接走 LLM，
// 领域问题走检索链，检索结果不可信再退回无依据的 LLM 调用。
type Router struct {
	llm       LLM
	retriever Retriever
}

func NewRouter(llm LLM, retriever Retriever) *Router {
	return &Router{llm: llm, retriever: retriever}
}

// Answer 总能给出一个回答，出错时逐级兜底
func (r *Router) Answer(ctx context.Context, question string, history []string) Answer {
	question = strings.TrimSpace(question)

	switch classify(question) {
	case kindGreeting:
		return r.direct(ctx, ai.GreetingPrompt(question))
	case kindOffTopic:
		return r.direct(ctx, ai.RedirectPrompt(question))
	}

	chunks, err := r.retriever.Retrieve(ctx, question, history)
	if err != nil {
		slog.Error("retrieval failed", "error", err)
		return r.unavailableFallback(ctx, question)
	}

	if len(chunks) == 0 {
		if text, err := r.llm.Generate(ctx, ai.ExpertFallbackPrompt(question)); err == nil {
			return Answer{Text: strings.TrimSpace(text), Sources: []string{SourceNoDocs}}
		}
		return r.unavailableFallback(ctx, question)
	}

	text, err := r.llm.Generate(ctx, ai.GroundedPrompt(chunks, question))
	if err != nil {
		slog.Error("grounded generation failed", "error", err)
		return r.unavailableFallback(ctx, question)
	}
	text = cleanAnswer(text)

	if untrusted(question, text) {
		slog.Debug("grounded answer failed trust heuristics, falling back", "question", question)
		if fb, err := r.llm.Generate(ctx, ai.ExpertFallbackPrompt(question)); err == nil {
			return Answer{Text: strings.TrimSpace(fb), Sources: []string{SourceGeneralAgricultural}}
		}
		// 兜底也失败时保留原答案
		slog.Warn("fallback generation failed, keeping grounded answer")
	}

	sources := usableSources(chunks)
	return Answer{Text: text, Sources: sources, Grounded: true}
}

// direct 问候/跑题直接调 LLM，失败时用固定话术
func (r *Router) direct(ctx context.Context, prompt string) Answer {
	text, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("direct generation failed, using canned reply", "error", err)
		return Answer{Text: cannedGreeting}
	}
	return Answer{Text: strings.TrimSpace(text), Sources: []string{SourceGeneralKnowledge}}
}

func (r *Router) unavailableFallback(ctx context.Context, question string) Answer {
	if text, err := r.llm.Generate(ctx, ai.UnavailableFallbackPrompt(question)); err == nil {
		return Answer{Text: strings.TrimSpace(text), Sources: []string{SourceUnavailable}}
	}
	return Answer{Text: cannedApology}
}

// cleanAnswer 去掉检索链偶尔残留的 "Helpful Answer:" 前缀
func cleanAnswer(text string) string {
	if idx := strings.LastIndex(text, "Helpful Answer:"); idx >= 0 {
		text = text[idx+len("Helpful Answer:"):]
	}
	return strings.TrimSpace(text)
}

// untrusted 判断有据回答是否可信。任一启发命中就换无依据兜底：
// 泛泛引用指南原文、答非所问提到 leaf miner、答案过短、
// 或问题与答案的词重叠率低于 0.1。
func untrusted(question, answer string) bool {
	qLower := strings.ToLower(question)
	aLower := strings.ToLower(answer)

	if strings.Contains(aLower, "according to the provided coffee leaf disease guide") {
		return true
	}
	if strings.Contains(aLower, "leaf miner") && !strings.Contains(qLower, "leaf miner") {
		return true
	}
	if len(strings.TrimSpace(answer)) < 20 {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(answer), "*") && !strings.Contains(aLower, qLower) {
		return true
	}
	return similarityScore(question, answer) < 0.1
}

// similarityScore 问题与答案的词重叠率：|交集| / max(|问题词|, 1)
func similarityScore(question, answer string) float64 {
	qWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(question)) {
		qWords[w] = true
	}
	aWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(answer)) {
		aWords[w] = true
	}

	common := 0
	for w := range qWords {
		if aWords[w] {
			common++
		}
	}

	denom := len(qWords)
	if denom < 1 {
		denom = 1
	}
	return float64(common) / float64(denom)
}

// usableSources 源块全是碎片时用统一标记代替
func usableSources(chunks []string) []string {
	for _, c := range chunks {
		if len(strings.TrimSpace(c)) >= 20 {
			return chunks
		}
	}
	return []string{SourceKnowledgeBase}
}
