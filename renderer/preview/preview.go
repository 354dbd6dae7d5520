// Package preview 把排版结果的单页绘制为 PNG，用于快速预览。
package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/layout"
	"github.com/ByLCY/inkpost/renderer"
)

// Renderer 使用 fogleman/gg 光栅化页面。斜体通过按命令 skew 错切直立字形实现，
// 下划线单独画线。解析后的字体跨请求共享；font.Face 带有字形缓冲，
// 每次渲染各自创建。
type Renderer struct {
	fonts *fonts.Set
	scale float64

	mu     sync.Mutex
	parsed map[layout.Face]*truetype.Font
}

// faceCache 是单次渲染内的字形缓存，不跨 goroutine 使用。
type faceCache map[faceKey]font.Face

var _ renderer.Renderer = (*Renderer)(nil)

type faceKey struct {
	face layout.Face
	size float64
}

// NewRenderer 创建预览渲染器，scale 为每 pt 对应的像素数，set 为空时使用内置字体。
func NewRenderer(set *fonts.Set, scale float64) *Renderer {
	if set == nil {
		set = fonts.Builtin()
	}
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{
		fonts:  set,
		scale:  scale,
		parsed: map[layout.Face]*truetype.Font{},
	}
}

// Render 返回第一页的 PNG。
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	return r.RenderPage(doc, 0)
}

// RenderPage 返回第 n 页（从 0 开始）的 PNG。
func (r *Renderer) RenderPage(doc *layout.Document, n int) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if n < 0 || n >= len(doc.Pages) {
		return nil, fmt.Errorf("页码 %d 超出范围（共 %d 页）", n, len(doc.Pages))
	}
	cfg := doc.Config
	width := int(math.Ceil(cfg.PageWidth * r.scale))
	height := int(math.Ceil(cfg.PageHeight * r.scale))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", cfg.PageWidth, cfg.PageHeight)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	faces := faceCache{}
	for _, cmd := range doc.PageCommands(doc.Pages[n].Index) {
		if err := r.drawCommand(dc, faces, cmd, cfg.PageHeight); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawCommand 把左下角原点的 pt 坐标翻转为左上角原点的像素坐标。
func (r *Renderer) drawCommand(dc *gg.Context, faces faceCache, cmd layout.DrawCommand, pageHeight float64) error {
	size := cmd.Size * r.scale
	face, err := r.face(faces, cmd.Face(), size)
	if err != nil {
		return err
	}
	x := cmd.X * r.scale
	y := (pageHeight - cmd.Y) * r.scale

	dc.SetFontFace(face)
	dc.SetRGB255(cmd.Color.R, cmd.Color.G, cmd.Color.B)
	if cmd.Skew != 0 {
		dc.Push()
		dc.ShearAbout(-cmd.Skew, 0, x, y)
		dc.DrawString(cmd.Text, x, y)
		dc.Pop()
	} else {
		dc.DrawString(cmd.Text, x, y)
	}

	if cmd.Underline {
		uy := y + size*0.12
		dc.SetLineWidth(math.Max(1, size/16))
		dc.DrawLine(x, uy, x+cmd.Width*r.scale, uy)
		dc.Stroke()
	}
	return nil
}

func (r *Renderer) face(faces faceCache, face layout.Face, size float64) (font.Face, error) {
	// 斜体由错切实现，字形只区分粗细。
	face.Italic = false
	key := faceKey{face: face, size: size}
	if f, ok := faces[key]; ok {
		return f, nil
	}
	tt, err := r.parse(face)
	if err != nil {
		return nil, err
	}
	f := truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faces[key] = f
	return f, nil
}

func (r *Renderer) parse(face layout.Face) (*truetype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tt, ok := r.parsed[face]; ok {
		return tt, nil
	}
	data := r.fonts.Variant(face.Bold, false)
	if face.Font == layout.FontEmoji && len(r.fonts.Emoji) > 0 {
		data = r.fonts.Emoji
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", face, err)
	}
	r.parsed[face] = tt
	return tt, nil
}
