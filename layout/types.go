package layout

import (
	"strings"

	"github.com/ByLCY/inkpost/markup"
)

// 该文件定义排版流水线各阶段之间传递的数据结构，供渲染器与调试 JSON 共用。
// 所有长度均以 pt 为单位，坐标原点位于页面左下角。

// Document 是一次排版的完整结果。Tokens 是整次排版共享的 token 表，
// 后续阶段只读取它，不做修改。
type Document struct {
	Config   Config         `json:"config"`
	Meta     DocumentMeta   `json:"meta"`
	Tokens   []markup.Token `json:"tokens"`
	Pages    []Page         `json:"pages"`
	Commands []DrawCommand  `json:"commands"`
}

// DocumentMeta 写入 PDF 的文档信息。
type DocumentMeta struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Creator  string `json:"creator"`
	Keywords string `json:"keywords"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Black 是默认文字颜色。
var Black = Color{}

// FontSelector 选择主字体或 emoji 字体。
type FontSelector int

const (
	FontMain FontSelector = iota
	FontEmoji
)

func (f FontSelector) String() string {
	if f == FontEmoji {
		return "emoji"
	}
	return "main"
}

func (f FontSelector) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Face 标识一个需要嵌入的字体变体。
type Face struct {
	Font   FontSelector `json:"font"`
	Bold   bool         `json:"bold"`
	Italic bool         `json:"italic"`
}

func (f Face) String() string {
	name := f.Font.String()
	switch {
	case f.Bold && f.Italic:
		return name + "-bold-italic"
	case f.Bold:
		return name + "-bold"
	case f.Italic:
		return name + "-italic"
	}
	return name + "-regular"
}

// StyleRecord 是 token 解析后的具体绘制样式。
type StyleRecord struct {
	Bold      bool         `json:"bold"`
	Italic    bool         `json:"italic"`
	Underline bool         `json:"underline"`
	Font      FontSelector `json:"font"`
	Size      float64      `json:"size"`
	Skew      float64      `json:"skew"`
}

// Face returns the font variant needed to draw this style.
func (s StyleRecord) Face() Face {
	return Face{Font: s.Font, Bold: s.Bold, Italic: s.Italic}
}

// StyleRun 是相邻且样式相同的一组 token。
type StyleRun struct {
	Tokens []markup.Token `json:"tokens"`
	Style  StyleRecord    `json:"style"`
}

// Fragment 是一行中样式一致的一段文字，Width 为测量宽度。
type Fragment struct {
	Text  string      `json:"text"`
	Style StyleRecord `json:"style"`
	Width float64     `json:"width"`
}

// Line 是换行后的一行。Y 为基线位置，由分页阶段写入。
type Line struct {
	Index     int        `json:"index"`
	Fragments []Fragment `json:"fragments"`
	Width     float64    `json:"width"`
	Y         float64    `json:"y"`
}

// Text 返回整行文字。
func (l Line) Text() string {
	var b strings.Builder
	for _, f := range l.Fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Page 记录落在同一页的行。
type Page struct {
	Index  int     `json:"index"`
	Lines  []Line  `json:"lines"`
	Height float64 `json:"height"`
}

// DrawCommand 是交给渲染器的一次绘制，X/Y 为基线起点。
type DrawCommand struct {
	Page      int          `json:"page"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Text      string       `json:"text"`
	Font      FontSelector `json:"font"`
	Size      float64      `json:"size"`
	Color     Color        `json:"color"`
	Skew      float64      `json:"skew"`
	Bold      bool         `json:"bold"`
	Italic    bool         `json:"italic"`
	Underline bool         `json:"underline"`
	Width     float64      `json:"width"`
}

// Face returns the font variant this command draws with.
func (c DrawCommand) Face() Face {
	return Face{Font: c.Font, Bold: c.Bold, Italic: c.Italic}
}

// PageCommands 返回第 page 页的绘制命令。
func (d *Document) PageCommands(page int) []DrawCommand {
	var out []DrawCommand
	for _, cmd := range d.Commands {
		if cmd.Page == page {
			out = append(out, cmd)
		}
	}
	return out
}
