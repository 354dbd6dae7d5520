// Package sanitize 负责在排版前剔除字体与排版器无法处理的字符。
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/rangetable"
)

var (
	// 基本拉丁 + Latin-1 补充，另外保留制表符与换行。
	latin = &unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x0009, Hi: 0x000A, Stride: 1},
			{Lo: 0x0020, Hi: 0x007E, Stride: 1},
			{Lo: 0x00A0, Hi: 0x00FF, Stride: 1},
		},
	}

	// Cyrillic 与 Cyrillic Supplement。
	cyrillic = &unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x0400, Hi: 0x052F, Stride: 1},
		},
	}

	// 常用标点：破折号、引号、省略号、ZWJ、货币符号、№、™、箭头。
	punctuation = &unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x2002, Hi: 0x200A, Stride: 1},
			{Lo: 0x200D, Hi: 0x200D, Stride: 1},
			{Lo: 0x2010, Hi: 0x2027, Stride: 1},
			{Lo: 0x202F, Hi: 0x205F, Stride: 1},
			{Lo: 0x20A0, Hi: 0x20C0, Stride: 1},
			{Lo: 0x20E3, Hi: 0x20E3, Stride: 1},
			{Lo: 0x2116, Hi: 0x2116, Stride: 1},
			{Lo: 0x2122, Hi: 0x2122, Stride: 1},
			{Lo: 0x2139, Hi: 0x2139, Stride: 1},
			{Lo: 0x2190, Hi: 0x21FF, Stride: 1},
		},
	}

	// emoji 所在区块，交给 EmojiSegmenter 识别。
	emojiBlocks = &unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x231A, Hi: 0x23FF, Stride: 1},
			{Lo: 0x24C2, Hi: 0x24C2, Stride: 1},
			{Lo: 0x25AA, Hi: 0x25FE, Stride: 1},
			{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
			{Lo: 0x2934, Hi: 0x2935, Stride: 1},
			{Lo: 0x2B05, Hi: 0x2B55, Stride: 1},
			{Lo: 0x3030, Hi: 0x3030, Stride: 1},
			{Lo: 0x303D, Hi: 0x303D, Stride: 1},
			{Lo: 0x3297, Hi: 0x3299, Stride: 2},
			{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
		},
		R32: []unicode.Range32{
			{Lo: 0x1F000, Hi: 0x1F0FF, Stride: 1},
			{Lo: 0x1F170, Hi: 0x1F251, Stride: 1},
			{Lo: 0x1F300, Hi: 0x1FAFF, Stride: 1},
			{Lo: 0xE0020, Hi: 0xE007F, Stride: 1},
		},
	}

	allowed = rangetable.Merge(latin, cyrillic, punctuation, emojiBlocks)
)

// Allowed 报告 r 是否在允许列表内。
func Allowed(r rune) bool {
	return unicode.Is(allowed, r)
}

// Clean 先做 NFC 规范化，再删除允许列表之外的字符（包括 \r）。
// Clean 是幂等的：Clean(Clean(s)) == Clean(s)。
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	normalized := norm.NFC.String(raw)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if Allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
