package kb

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(100, 20)
	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(100, 20)
	chunks := s.Split("Coffee leaf rust is a fungal disease.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Coffee leaf rust is a fungal disease.", chunks[0])
}

func TestSplitRespectsChunkSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Rust lesions appear as yellow-orange powdery spots on the underside of leaves. ")
	}
	s := NewSplitter(200, 40)

	chunks := s.Split(b.String())
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 200, "chunk %d too large", i)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	text := "First paragraph about rust.\n\nSecond paragraph about leaf spot.\n\nThird paragraph about berry disease."
	s := NewSplitter(40, 0)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "First paragraph about rust.", chunks[0])
	assert.Equal(t, "Second paragraph about leaf spot.", chunks[1])
	assert.Equal(t, "Third paragraph about berry disease.", chunks[2])
}

func TestSplitOverlapCarriesTail(t *testing.T) {
	// 30 个短句，块之间应共享来自上一块尾部的内容
	var parts []string
	for i := 0; i < 30; i++ {
		parts = append(parts, "sentence number "+strings.Repeat("x", i%5)+"end.")
	}
	text := strings.Join(parts, " ")
	s := NewSplitter(120, 40)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])/2:]
		overlap := false
		for _, w := range strings.Fields(prevTail) {
			if strings.Contains(chunks[i], w) {
				overlap = true
				break
			}
		}
		assert.True(t, overlap, "chunk %d shares nothing with the tail of chunk %d", i, i-1)
	}
}

func TestSplitUnbrokenString(t *testing.T) {
	// 没有任何分隔符时按固定窗口硬切
	text := strings.Repeat("a", 950)
	s := NewSplitter(300, 50)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 300)
		total += len(c)
	}
	assert.GreaterOrEqual(t, total, 950)
}

func TestSplitMultibyteText(t *testing.T) {
	// 长度按字符计：1200 字节的连续中文（400 字）装进一个 1000 字块
	text := strings.Repeat("咖", 400)
	s := NewSplitter(1000, 200)

	chunks := s.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])

	// 超过窗口时硬切也必须落在字符边界上
	s = NewSplitter(100, 20)
	chunks = s.Split(text)
	require.Greater(t, len(chunks), 1)
	total := 0
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100, "chunk %d too large", i)
		total += utf8.RuneCountInString(c)
	}
	assert.GreaterOrEqual(t, total, 400)
}

func TestSplitMixedScripts(t *testing.T) {
	text := "Coffee leaf rust 咖啡叶锈病 is caused by Hemileia vastatrix.\n\n" +
		strings.Repeat("病斑呈黄橙色粉状，多见于叶片背面。", 20)
	s := NewSplitter(120, 30)

	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120, "chunk %d too large", i)
	}
}

func TestNewSplitterSanitizesArgs(t *testing.T) {
	s := NewSplitter(0, -1)
	assert.Equal(t, 1000, s.chunkSize)
	assert.Equal(t, 200, s.chunkOverlap)

	s = NewSplitter(100, 100)
	assert.Equal(t, 20, s.chunkOverlap)
}
