package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/markup"
	"github.com/ByLCY/inkpost/sanitize"
)

// Build 依次执行清洗、标记解析、emoji 分段、样式解析、换行、分页与命令生成。
// 参数在产生任何 token 之前校验。
func Build(text string, opts BuildOptions) (*Document, error) {
	cfg, err := opts.Config.Validate()
	if err != nil {
		return nil, err
	}
	if opts.Metrics == nil {
		return nil, &ConfigError{Field: "metrics", Reason: "font metrics provider is required"}
	}
	set := opts.Fonts
	if set == nil {
		set = fonts.Builtin()
	}

	clean := sanitize.Clean(text)
	var tokens []markup.Token
	switch {
	case opts.Features.Markup:
		tokens = markup.Parse(clean)
	case clean != "":
		tokens = []markup.Token{{Content: clean}}
	}
	tokens = Segment(tokens, opts.Features.Emoji)
	runs := GroupRuns(tokens, cfg)

	if err := embedFaces(opts.Metrics, set, runs); err != nil {
		return nil, err
	}
	widthOf := func(s string, st StyleRecord) float64 {
		w := opts.Metrics.WidthOfTextAtSize(s, st.Size, st.Face())
		if math.IsNaN(w) || w < 0 {
			return 0
		}
		return w
	}
	lines, err := Wrap(runs, cfg.MaxWidth, widthOf)
	if err != nil {
		return nil, err
	}
	pages := Paginate(lines, cfg.PageHeight, cfg.Margin, cfg.LineHeight)

	return &Document{
		Config:   cfg,
		Meta:     opts.Meta,
		Tokens:   tokens,
		Pages:    pages,
		Commands: Emit(pages, cfg.Margin, cfg.Color),
	}, nil
}

// embedFaces 嵌入 runs 用到的每个字体变体，各嵌入一次。
// 没有 emoji 字体时跳过，由测量方自行回退到主字体。
func embedFaces(m FontMetrics, set *fonts.Set, runs []StyleRun) error {
	seen := make(map[Face]bool)
	for _, run := range runs {
		face := run.Style.Face()
		if seen[face] {
			continue
		}
		seen[face] = true
		data := faceBytes(set, face)
		if len(data) == 0 {
			if face.Font == FontEmoji {
				continue
			}
			return &CollaboratorError{
				Collaborator: CollaboratorFontMetrics,
				Op:           "embed",
				Err:          fmt.Errorf("no font data for %s", face),
			}
		}
		if err := m.Embed(face, data); err != nil {
			return &CollaboratorError{
				Collaborator: CollaboratorFontMetrics,
				Op:           "embed " + face.String(),
				Err:          err,
			}
		}
	}
	return nil
}

func faceBytes(set *fonts.Set, face Face) []byte {
	if face.Font == FontEmoji {
		return set.Emoji
	}
	return set.Variant(face.Bold, face.Italic)
}
