package markup

import "strings"

// Kind 区分 token 在 emoji 分段之后的类别。
type Kind int

const (
	// KindUnset 表示尚未经过 emoji 分段。
	KindUnset Kind = iota
	KindText
	KindEmoji
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEmoji:
		return "emoji"
	default:
		return "unset"
	}
}

// MarshalText 让调试 JSON 输出可读的类别名。
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Styles 是 token 上打开的样式集合。
type Styles uint8

const (
	Bold Styles = 1 << iota
	Italic
	Underline
)

// Has 报告集合中是否包含 s 的全部位。
func (s Styles) Has(flag Styles) bool {
	return flag != 0 && s&flag == flag
}

func (s Styles) String() string {
	if s == 0 {
		return "plain"
	}
	parts := make([]string, 0, 3)
	if s.Has(Bold) {
		parts = append(parts, "bold")
	}
	if s.Has(Italic) {
		parts = append(parts, "italic")
	}
	if s.Has(Underline) {
		parts = append(parts, "underline")
	}
	return strings.Join(parts, "|")
}

// MarshalText 让调试 JSON 输出可读的样式名。
func (s Styles) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Token 是一段拥有相同样式集合的连续文本。
type Token struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	Styles  Styles `json:"styles"`
}
