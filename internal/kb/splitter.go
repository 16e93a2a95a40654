package kb

import (
	"strings"
	"unicode/utf8"
)

// 从粗到细的分隔符层级：段落 → 行 → 词 → 字符
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter 把长文本切成带重叠的块。先用最粗的、文本中实际出现的
// 分隔符切开，过大的片段再用更细的分隔符递归切分，最后把相邻片段
// 合并回不超过 chunkSize 的块，并从上一块尾部保留 chunkOverlap 的重叠。
// 所有长度一律按字符（rune）计。
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.splitText(text, s.separators)
}

func (s *Splitter) splitText(text string, seps []string) []string {
	sep := ""
	var rest []string
	for i, sp := range seps {
		if sp == "" {
			break
		}
		if strings.Contains(text, sp) {
			sep, rest = sp, seps[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		parts = hardSplit(text, s.chunkSize)
	} else {
		parts = strings.Split(text, sep)
	}

	var chunks []string
	var fitting []string
	for _, p := range parts {
		if utf8.RuneCountInString(p) <= s.chunkSize {
			fitting = append(fitting, p)
			continue
		}
		// 片段仍然过大：先合并已攒下的，再用更细的分隔符递归
		chunks = append(chunks, s.merge(fitting, sep)...)
		fitting = fitting[:0]
		chunks = append(chunks, s.splitText(p, rest)...)
	}
	return append(chunks, s.merge(fitting, sep)...)
}

// merge 把切开的片段重新拼成块，块之间保留重叠
func (s *Splitter) merge(parts []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	var chunks []string
	var cur []string
	total := 0

	for _, p := range parts {
		pl := utf8.RuneCountInString(p)
		extra := 0
		if len(cur) > 0 {
			extra = sepLen
		}
		if total+pl+extra > s.chunkSize && len(cur) > 0 {
			if chunk := strings.TrimSpace(strings.Join(cur, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// 从头部丢弃，直到窗口缩回重叠大小
			for total > s.chunkOverlap || (total+pl+extra > s.chunkSize && total > 0) {
				drop := utf8.RuneCountInString(cur[0])
				if len(cur) > 1 {
					drop += sepLen
				}
				total -= drop
				cur = cur[1:]
				if len(cur) == 0 {
					extra = 0
				}
			}
		}
		cur = append(cur, p)
		total += pl
		if len(cur) > 1 {
			total += sepLen
		}
	}

	if chunk := strings.TrimSpace(strings.Join(cur, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// hardSplit 按固定字符窗口硬切（rune 安全）
func hardSplit(text string, size int) []string {
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
