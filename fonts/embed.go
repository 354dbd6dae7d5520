// Package fonts 提供排版使用的字体字节。内置字体为 Go 字体家族，
// 也可以通过文件路径替换任意一个变体。
package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

const embedPrefix = "embed:"

var builtin = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,
}

// Set 保存一套字体变体的原始字节，加载后只读共享。Emoji 可以为空。
type Set struct {
	Regular    []byte
	Bold       []byte
	Italic     []byte
	BoldItalic []byte
	Emoji      []byte
}

// Variant 返回主字体对应粗体/斜体组合的字节。
func (s *Set) Variant(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return s.BoldItalic
	case bold:
		return s.Bold
	case italic:
		return s.Italic
	}
	return s.Regular
}

// Paths 指定自定义字体文件，空字段使用内置字体。
type Paths struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Emoji      string
}

// Builtin 返回内置 Go 字体家族，不包含 emoji 字体。
func Builtin() *Set {
	return &Set{
		Regular:    builtin["go-regular"],
		Bold:       builtin["go-bold"],
		Italic:     builtin["go-italic"],
		BoldItalic: builtin["go-bold-italic"],
	}
}

// LoadSet 逐个读取 p 中的字体，未指定的变体回退到内置字体。
func LoadSet(p Paths) (*Set, error) {
	set := Builtin()
	for _, slot := range []struct {
		path string
		dst  *[]byte
	}{
		{p.Regular, &set.Regular},
		{p.Bold, &set.Bold},
		{p.Italic, &set.Italic},
		{p.BoldItalic, &set.BoldItalic},
		{p.Emoji, &set.Emoji},
	} {
		if slot.path == "" {
			continue
		}
		data, err := Load(slot.path)
		if err != nil {
			return nil, err
		}
		*slot.dst = data
	}
	return set, nil
}

// Load 返回字体字节，path 可写为 "embed:go-bold" 形式的内置名称，或者字体文件路径。
func Load(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, embedPrefix); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("未知的内置字体 %s", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("字体 %s 为空", path)
	}
	return data, nil
}
