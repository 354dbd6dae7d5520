package layout

import (
	"strings"

	"github.com/gogpu/gg/text/emoji"

	"github.com/ByLCY/inkpost/markup"
)

// Segment 把每个 token 拆成交替的文本/emoji 子 token，子 token 继承父 token 的样式。
// 子 token 内容按顺序拼接后与父 token 完全一致。enabled 为 false 时所有 token 都标记为文本。
func Segment(tokens []markup.Token, enabled bool) []markup.Token {
	out := make([]markup.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Content == "" {
			continue
		}
		if !enabled {
			out = append(out, markup.Token{Kind: markup.KindText, Content: tok.Content, Styles: tok.Styles})
			continue
		}
		var subs []markup.Token
		for _, piece := range splitEmoji(tok.Content) {
			subs = appendPiece(subs, markup.Token{Kind: piece.kind, Content: piece.text, Styles: tok.Styles})
		}
		out = append(out, subs...)
	}
	return out
}

type emojiPiece struct {
	kind markup.Kind
	text string
}

func splitEmoji(text string) []emojiPiece {
	var pieces []emojiPiece
	for _, run := range emoji.Segment(text) {
		if !run.IsEmoji {
			pieces = append(pieces, emojiPiece{markup.KindText, run.Text})
			continue
		}
		pieces = append(pieces, splitEmojiRun(run.Text)...)
	}
	return pieces
}

// splitEmojiRun 逐个序列判断：没有 U+FE0F 的文本型符号（©、®、™、☺）按文本处理。
// 序列拼接若无法还原原文，整段视为 emoji。
func splitEmojiRun(text string) []emojiPiece {
	seqs := emoji.ParseString(text)
	var b strings.Builder
	for _, seq := range seqs {
		b.WriteString(seq.String())
	}
	if b.String() != text {
		return []emojiPiece{{markup.KindEmoji, text}}
	}
	pieces := make([]emojiPiece, 0, len(seqs))
	for _, seq := range seqs {
		kind := markup.KindEmoji
		if seq.Type == emoji.SequenceSimple && !emoji.IsEmojiPresentation(seq.BaseCodepoint) {
			kind = markup.KindText
		}
		pieces = append(pieces, emojiPiece{kind, seq.String()})
	}
	return pieces
}

// appendPiece 合并同类相邻子 token，空内容直接丢弃。
func appendPiece(out []markup.Token, tok markup.Token) []markup.Token {
	if tok.Content == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Kind == tok.Kind {
		out[n-1].Content += tok.Content
		return out
	}
	return append(out, tok)
}
