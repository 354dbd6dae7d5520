package layout

import (
	"math"
	"strings"
	"unicode"
)

// WidthFunc 返回 text 按 st 绘制时的宽度（pt）。
type WidthFunc func(text string, st StyleRecord) float64

type piece struct {
	text  string
	style StyleRecord
}

// Wrap 对每个段落（以 \n 分隔）做贪心换行。一个词可以跨越多种样式，
// 每一段都用自己的样式测量；词与词之间的空格按行尾样式测量。
// 只要 lineWidth + spaceWidth + wordWidth < maxWidth 就继续追加，否则换行。
// 超长的词独占一行，空段落产生一个空行。
func Wrap(runs []StyleRun, maxWidth float64, widthOf WidthFunc) ([]Line, error) {
	if !(maxWidth > 0) || math.IsInf(maxWidth, 0) {
		return nil, &ConfigError{Field: "maxWidth", Reason: "must be positive"}
	}
	if widthOf == nil {
		return nil, &ConfigError{Field: "metrics", Reason: "width function is required"}
	}
	if len(runs) == 0 {
		return nil, nil
	}

	var lines []Line
	for _, para := range splitParagraphs(runs) {
		words := splitWords(para)
		if len(words) == 0 {
			lines = append(lines, Line{Index: len(lines)})
			continue
		}
		lb := &lineBuilder{}
		for _, word := range words {
			wordWidth := 0.0
			widths := make([]float64, len(word))
			for i, p := range word {
				widths[i] = widthOf(p.text, p.style)
				wordWidth += widths[i]
			}
			if lb.empty() {
				lb.addWord(word, widths)
				continue
			}
			sp := spaceStyle(lb.lastStyle(), word[0].style)
			spaceWidth := widthOf(" ", sp)
			if lb.width+spaceWidth+wordWidth < maxWidth {
				lb.add(piece{" ", sp}, spaceWidth)
				lb.addWord(word, widths)
				continue
			}
			lines = append(lines, lb.line(len(lines)))
			lb = &lineBuilder{}
			lb.addWord(word, widths)
		}
		lines = append(lines, lb.line(len(lines)))
	}
	return lines, nil
}

func splitParagraphs(runs []StyleRun) [][]piece {
	paras := [][]piece{nil}
	for _, run := range runs {
		for _, tok := range run.Tokens {
			parts := strings.Split(tok.Content, "\n")
			for i, part := range parts {
				if i > 0 {
					paras = append(paras, nil)
				}
				if part != "" {
					last := len(paras) - 1
					paras[last] = append(paras[last], piece{part, run.Style})
				}
			}
		}
	}
	return paras
}

// isBreak 不把不换行空格当作词边界。
func isBreak(r rune) bool {
	return unicode.IsSpace(r) && r != '\u00a0' && r != '\u202f'
}

func splitWords(para []piece) [][]piece {
	var words [][]piece
	var cur []piece
	for _, p := range para {
		start := -1
		for i, r := range p.text {
			if !isBreak(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				cur = append(cur, piece{p.text[start:i], p.style})
				start = -1
			}
			if len(cur) > 0 {
				words = append(words, cur)
				cur = nil
			}
		}
		if start >= 0 {
			cur = append(cur, piece{p.text[start:], p.style})
		}
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// spaceStyle 优先沿用行尾样式；emoji 字体通常没有空格字形，此时改用相邻文本样式。
func spaceStyle(prev, next StyleRecord) StyleRecord {
	if prev.Font != FontEmoji {
		return prev
	}
	if next.Font != FontEmoji {
		return next
	}
	prev.Font = FontMain
	return prev
}

type lineBuilder struct {
	fragments []Fragment
	width     float64
}

func (lb *lineBuilder) empty() bool { return len(lb.fragments) == 0 }

func (lb *lineBuilder) lastStyle() StyleRecord {
	return lb.fragments[len(lb.fragments)-1].Style
}

func (lb *lineBuilder) add(p piece, width float64) {
	lb.width += width
	if n := len(lb.fragments); n > 0 && lb.fragments[n-1].Style == p.style {
		lb.fragments[n-1].Text += p.text
		lb.fragments[n-1].Width += width
		return
	}
	lb.fragments = append(lb.fragments, Fragment{Text: p.text, Style: p.style, Width: width})
}

func (lb *lineBuilder) addWord(word []piece, widths []float64) {
	for i, p := range word {
		lb.add(p, widths[i])
	}
}

func (lb *lineBuilder) line(index int) Line {
	return Line{Index: index, Fragments: lb.fragments, Width: lb.width}
}
