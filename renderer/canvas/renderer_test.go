package canvasrenderer

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/layout"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestWidthOfTextAtSize(t *testing.T) {
	r := newRenderer(t)
	regular := layout.Face{}
	one := r.WidthOfTextAtSize("a", 12, regular)
	two := r.WidthOfTextAtSize("aa", 12, regular)
	if one <= 0 || two <= one {
		t.Fatalf("expected width to grow with text: one=%g two=%g", one, two)
	}
	if r.WidthOfTextAtSize("", 12, regular) != 0 {
		t.Fatalf("empty text must have zero width")
	}
	// 宽度以 pt 计：12pt 的小写字母不应超过 12pt。
	if one > 12 {
		t.Fatalf("width looks like it is not in points: %g", one)
	}
	if big := r.WidthOfTextAtSize("a", 24, regular); big <= one {
		t.Fatalf("larger size must be wider: %g <= %g", big, one)
	}
}

func TestEmojiFaceFallsBackToMainFamily(t *testing.T) {
	r := newRenderer(t)
	if w := r.WidthOfTextAtSize("x", 12, layout.Face{Font: layout.FontEmoji}); w <= 0 {
		t.Fatalf("emoji face without embedded font should fall back, got width %g", w)
	}
}

func TestEmbedRejectsInvalidFont(t *testing.T) {
	r := newRenderer(t)
	if err := r.Embed(layout.Face{Font: layout.FontEmoji}, []byte("definitely not a font")); err == nil {
		t.Fatalf("expected error for invalid font data")
	}
	if err := r.Embed(layout.Face{Font: layout.FontEmoji}, nil); err == nil {
		t.Fatalf("expected error for empty font data")
	}
	// 主字体的变体在构造时已加载，再次嵌入不做任何事。
	if err := r.Embed(layout.Face{Bold: true}, nil); err != nil {
		t.Fatalf("embedding a loaded variant should be a no-op, got %v", err)
	}
}

func TestNewRendererRejectsInvalidFont(t *testing.T) {
	set := fonts.Builtin()
	set.Emoji = []byte("not a font")
	if _, err := NewRenderer(set); err == nil {
		t.Fatalf("expected error for invalid emoji font")
	}
}

func TestConcurrentEmbedMeasureRender(t *testing.T) {
	r := newRenderer(t)
	set := fonts.Builtin()
	doc, err := layout.Build("Hello **bold** _italic_ __under__", layout.BuildOptions{
		Config:   layout.DefaultConfig(),
		Features: layout.DefaultFeatures(),
		Metrics:  r,
	})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if w := r.WidthOfTextAtSize("hello", 12, layout.Face{}); w <= 0 {
					t.Errorf("width = %g", w)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for _, face := range []layout.Face{{Bold: true}, {Italic: true}, {Bold: true, Italic: true}} {
				if err := r.Embed(face, set.Variant(face.Bold, face.Italic)); err != nil {
					errs <- err
				}
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := r.Render(doc); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent use failed: %v", err)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := newRenderer(t)
	cfg := layout.DefaultConfig()
	cfg.PageHeight = 200
	text := strings.Repeat("Hello **bold** _italic_ __under__ world. ", 30)
	doc, err := layout.Build(text, layout.BuildOptions{
		Config:   cfg,
		Features: layout.DefaultFeatures(),
		Metrics:  r,
		Meta:     layout.DocumentMeta{Title: "test", Creator: "inkpost"},
	})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if len(doc.Pages) < 2 {
		t.Fatalf("expected multiple pages, got %d", len(doc.Pages))
	}
	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			if line.Width >= cfg.MaxWidth {
				t.Fatalf("line %d overflows: width=%g max=%g", line.Index, line.Width, cfg.MaxWidth)
			}
		}
	}
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
	if _, err := r.Render(&layout.Document{}); err == nil {
		t.Fatalf("expected error for document without pages")
	}
}
