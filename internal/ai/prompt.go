package ai

import (
	"fmt"
	"strings"
)

// RemedyQuestion 根据检测到的病害列表生成药方问题
func RemedyQuestion(diseases []string) string {
	return fmt.Sprintf("What is the remedy for %s in coffee leaves? Provide detailed treatment and prevention methods.",
		strings.Join(diseases, ", "))
}

// GroundedPrompt 组装基于知识库上下文的 RAG 提示词
func GroundedPrompt(contextChunks []string, question string) string {
	var b strings.Builder
	b.WriteString("Use the following pieces of context to answer the question at the end.\n")
	b.WriteString("If you don't know the answer or if the context doesn't contain relevant information, ")
	b.WriteString("just say that you don't have specific information about this topic in your knowledge base.\n")
	b.WriteString("Don't try to make up an answer or provide information that's not in the context.\n\n")
	b.WriteString("Context:\n")
	for _, chunk := range contextChunks {
		b.WriteString(chunk)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer: ", question)
	return b.String()
}

// GreetingPrompt 问候语直接走 LLM
func GreetingPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful coffee agriculture assistant. Respond to this greeting in a friendly, professional manner and offer to help with coffee-related questions:

User: %s

Keep your response brief and friendly.`, question)
}

// RedirectPrompt 非咖啡话题礼貌引导回来
func RedirectPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful assistant specializing in coffee agriculture and plant diseases. The user asked: %s

If this question is not related to coffee, plants, or agriculture, politely redirect them to coffee-related topics while still being helpful.`, question)
}

// ExpertFallbackPrompt 检索结果不可信时的无依据兜底
func ExpertFallbackPrompt(question string) string {
	return fmt.Sprintf(`You are an expert in coffee cultivation and plant pathology. Please provide a detailed and helpful answer to the following question:

Question: %s

If you don't have specific information about this topic, please say so and provide general guidance where appropriate.
Be honest about the limitations of your knowledge while still being helpful.`, question)
}

// UnavailableFallbackPrompt 检索链出错时的兜底
func UnavailableFallbackPrompt(question string) string {
	return fmt.Sprintf(`You are a helpful coffee agriculture expert. Please answer this question:
%s

Be friendly and helpful, and if you don't know something specific, admit it while providing what general guidance you can.`, question)
}

// CondensePrompt 把依赖上下文的追问改写成独立问题，便于向量检索
func CondensePrompt(history []string, question string) string {
	return fmt.Sprintf(`Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
%s

Follow Up Input: %s

Standalone question: `, strings.Join(history, "\n"), question)
}
