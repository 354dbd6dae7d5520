package layout

// Emit 把分页结果展开成绘制命令：逐页、逐行（自上而下）、逐段（自左向右）。
// 每行 x 从 margin 开始，按段的测量宽度累加；空段不产生命令。
func Emit(pages []Page, margin float64, color Color) []DrawCommand {
	var cmds []DrawCommand
	for _, page := range pages {
		for _, line := range page.Lines {
			x := margin
			for _, frag := range line.Fragments {
				if frag.Text != "" {
					st := frag.Style
					cmds = append(cmds, DrawCommand{
						Page:      page.Index,
						X:         x,
						Y:         line.Y,
						Text:      frag.Text,
						Font:      st.Font,
						Size:      st.Size,
						Color:     color,
						Skew:      st.Skew,
						Bold:      st.Bold,
						Italic:    st.Italic,
						Underline: st.Underline,
						Width:     frag.Width,
					})
				}
				x += frag.Width
			}
		}
	}
	return cmds
}
