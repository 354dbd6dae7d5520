package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/layout"
	"github.com/ByLCY/inkpost/renderer"
)

// Renderer draws layout documents to PDF via github.com/tdewolff/canvas.
// It also measures text, so the same instance serves as layout.FontMetrics.
// All font access, including shaping, happens under fontMu: canvas font
// families and their shapers are not safe for concurrent use.
type Renderer struct {
	fontMu   sync.Mutex
	families map[layout.FontSelector]*fontFamilyEntry
	builtin  *fonts.Set
}

var (
	_ renderer.Renderer  = (*Renderer)(nil)
	_ layout.FontMetrics = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	loaded map[canvas.FontStyle]bool
}

// NewRenderer creates a renderer with every variant of set already loaded.
// A nil set means the built-in Go fonts. The emoji family is loaded only
// when set carries emoji bytes.
func NewRenderer(set *fonts.Set) (*Renderer, error) {
	if set == nil {
		set = fonts.Builtin()
	}
	r := &Renderer{
		families: map[layout.FontSelector]*fontFamilyEntry{},
		builtin:  fonts.Builtin(),
	}
	for _, face := range []layout.Face{
		{}, {Bold: true}, {Italic: true}, {Bold: true, Italic: true},
	} {
		data := set.Variant(face.Bold, face.Italic)
		if len(data) == 0 {
			data = r.builtin.Variant(face.Bold, face.Italic)
		}
		if err := r.loadLocked(layout.FontMain, styleOf(face), data); err != nil {
			return nil, err
		}
	}
	if len(set.Emoji) > 0 {
		if err := r.loadLocked(layout.FontEmoji, canvas.FontRegular, set.Emoji); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Embed 把字体字节加载进对应字体族；已加载的变体直接忽略。
// emoji 只有一个变体，粗细斜体都映射到常规样式。
func (r *Renderer) Embed(face layout.Face, data []byte) error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.loadLocked(face.Font, r.styleFor(face.Font, face), data)
}

// WidthOfTextAtSize 返回以 pt 为单位的宽度。
func (r *Renderer) WidthOfTextAtSize(text string, size float64, face layout.Face) float64 {
	if text == "" || size <= 0 {
		return 0
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	ff, err := r.fontFaceLocked(face, size, color.Black, false)
	if err != nil {
		return 0
	}
	return toPt(ff.TextWidth(text))
}

// Render renders the document into a PDF byte slice.
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	width, height := toMm(doc.Config.PageWidth), toMm(doc.Config.PageHeight)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	r.applyMeta(writer, doc.Meta)
	for i, page := range doc.Pages {
		if i > 0 {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		if err := r.drawPageLocked(ctx, doc.PageCommands(page.Index)); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	writer.SetInfo(meta.Title, meta.Subject, meta.Keywords, meta.Author, meta.Creator)
}

// drawPageLocked 使用默认的左下角原点坐标系，与排版坐标一致，只需做 pt→mm 换算。
func (r *Renderer) drawPageLocked(ctx *canvas.Context, cmds []layout.DrawCommand) error {
	for _, cmd := range cmds {
		face, err := r.fontFaceLocked(cmd.Face(), cmd.Size, colorFromLayout(cmd.Color), cmd.Underline)
		if err != nil {
			return err
		}
		ctx.DrawText(toMm(cmd.X), toMm(cmd.Y), canvas.NewTextLine(face, cmd.Text, canvas.Left))
	}
	return nil
}

func (r *Renderer) fontFaceLocked(face layout.Face, size float64, col color.Color, underline bool) (*canvas.FontFace, error) {
	family, style, err := r.familyLocked(face)
	if err != nil {
		return nil, err
	}
	if underline {
		return family.Face(size, col, style, canvas.FontNormal, canvas.FontUnderline), nil
	}
	return family.Face(size, col, style, canvas.FontNormal), nil
}

// familyLocked 找到能绘制 face 的字体族。emoji 字体缺失时回退到主字体，
// 主字体缺失的变体按需加载内置字体。
func (r *Renderer) familyLocked(face layout.Face) (*canvas.FontFamily, canvas.FontStyle, error) {
	if entry, ok := r.families[face.Font]; ok {
		style := r.styleFor(face.Font, face)
		if entry.loaded[style] {
			return entry.family, style, nil
		}
	}
	style := styleOf(face)
	if entry, ok := r.families[layout.FontMain]; ok && entry.loaded[style] {
		return entry.family, style, nil
	}
	if err := r.loadLocked(layout.FontMain, style, r.builtin.Variant(face.Bold, face.Italic)); err != nil {
		return nil, canvas.FontRegular, err
	}
	return r.families[layout.FontMain].family, style, nil
}

func (r *Renderer) styleFor(sel layout.FontSelector, face layout.Face) canvas.FontStyle {
	if sel == layout.FontEmoji {
		return canvas.FontRegular
	}
	return styleOf(face)
}

func (r *Renderer) loadLocked(sel layout.FontSelector, style canvas.FontStyle, data []byte) error {
	entry, ok := r.families[sel]
	if !ok {
		entry = &fontFamilyEntry{
			family: canvas.NewFontFamily("inkpost-" + sel.String()),
			loaded: map[canvas.FontStyle]bool{},
		}
		r.families[sel] = entry
	}
	if entry.loaded[style] {
		return nil
	}
	if len(data) == 0 {
		return fmt.Errorf("字体 %s 缺少数据", sel)
	}
	if err := entry.family.LoadFont(data, 0, style); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", sel, err)
	}
	entry.loaded[style] = true
	return nil
}

func styleOf(face layout.Face) canvas.FontStyle {
	style := canvas.FontRegular
	if face.Bold {
		style = canvas.FontBold
	}
	if face.Italic {
		style |= canvas.FontItalic
	}
	return style
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
