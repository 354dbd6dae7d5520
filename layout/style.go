package layout

import "github.com/ByLCY/inkpost/markup"

// Resolve 把 token 的样式集合映射成具体的绘制样式。
// emoji 固定使用 emoji 字体与基础字号，不加粗也不倾斜。
func Resolve(tok markup.Token, cfg Config) StyleRecord {
	st := StyleRecord{
		Underline: tok.Styles.Has(markup.Underline),
		Font:      FontMain,
		Size:      cfg.BaseFontSize,
	}
	if tok.Kind == markup.KindEmoji {
		st.Font = FontEmoji
		return st
	}
	if tok.Styles.Has(markup.Bold) {
		st.Bold = true
		st.Size = cfg.BaseFontSize + cfg.BoldDelta
	}
	if tok.Styles.Has(markup.Italic) {
		st.Italic = true
		st.Skew = cfg.ItalicSkew
	}
	return st
}

// GroupRuns 把样式相同的相邻 token 合并成一个 run。
func GroupRuns(tokens []markup.Token, cfg Config) []StyleRun {
	var runs []StyleRun
	for _, tok := range tokens {
		st := Resolve(tok, cfg)
		if n := len(runs); n > 0 && runs[n-1].Style == st {
			runs[n-1].Tokens = append(runs[n-1].Tokens, tok)
			continue
		}
		runs = append(runs, StyleRun{Tokens: []markup.Token{tok}, Style: st})
	}
	return runs
}
