// Package markup 将带有轻量标记的文本拆分为带样式集合的 token 序列。
//
// 支持的标签为 <b>/<strong>、<i>/<em>、<u>/<ins> 与 <br>，另外
// **粗体**、_斜体_、__下划线__、~~下划线~~ 等成对标记会先改写为标签。
// 任何格式错误都会被静默修复，Parse 永不失败。
package markup

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Tag", Pattern: `</?[A-Za-z][A-Za-z0-9]*(?:\s[^<>]*)?/?>`},
		{Name: "Text", Pattern: `[^<]+`},
		{Name: "Lt", Pattern: `<`},
	})

	tagTokenType = mustTokenType("Tag")
)

func mustTokenType(name string) lexer.TokenType {
	tt, ok := markupLexer.Symbols()[name]
	if !ok {
		panic("markup: unknown token " + name)
	}
	return tt
}

var tagStyles = map[string]Styles{
	"b":      Bold,
	"strong": Bold,
	"i":      Italic,
	"em":     Italic,
	"u":      Underline,
	"ins":    Underline,
}

// Parse 先改写成对标记，再按标签切分 token。
func Parse(text string) []Token {
	return Tokenize(Normalize(text))
}

// Tokenize 只识别规范标签。两个被识别的标签之间的字符组成一个 token，
// 其样式为当时所有已打开标签的并集；未知标签被丢弃，不会切分 token。
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	lex, err := markupLexer.LexString("", text)
	if err != nil {
		return []Token{{Content: text}}
	}
	lexemes, err := lexer.ConsumeAll(lex)
	if err != nil {
		return []Token{{Content: text}}
	}

	st := &tagState{}
	for _, lx := range lexemes {
		if lx.EOF() {
			break
		}
		if lx.Type == tagTokenType {
			st.tag(lx.Value)
			continue
		}
		st.buf.WriteString(lx.Value)
	}
	st.flush()
	return st.tokens
}

type tagState struct {
	open   []Styles
	buf    strings.Builder
	tokens []Token
}

func (s *tagState) current() Styles {
	var out Styles
	for _, st := range s.open {
		out |= st
	}
	return out
}

func (s *tagState) flush() {
	if s.buf.Len() == 0 {
		return
	}
	s.tokens = append(s.tokens, Token{Content: s.buf.String(), Styles: s.current()})
	s.buf.Reset()
}

func (s *tagState) tag(raw string) {
	name, closing, selfClosing := splitTag(raw)
	if name == "br" {
		s.buf.WriteByte('\n')
		return
	}
	style, ok := tagStyles[name]
	if !ok || selfClosing {
		return
	}
	if closing {
		idx := -1
		for i := len(s.open) - 1; i >= 0; i-- {
			if s.open[i] == style {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		s.flush()
		s.open = append(s.open[:idx], s.open[idx+1:]...)
		return
	}
	s.flush()
	s.open = append(s.open, style)
}

func splitTag(raw string) (name string, closing, selfClosing bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	if strings.HasPrefix(body, "/") {
		closing = true
		body = body[1:]
	}
	if strings.HasSuffix(body, "/") {
		selfClosing = true
		body = body[:len(body)-1]
	}
	// 属性一律忽略，只取标签名。
	if fields := strings.Fields(body); len(fields) > 0 {
		name = strings.ToLower(fields[0])
	}
	return name, closing, selfClosing
}
