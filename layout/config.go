package layout

import "math"

// Config 是单次请求的排版参数，单位均为 pt。
type Config struct {
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	MaxWidth     float64 `json:"maxWidth"`
	Margin       float64 `json:"margin"`
	LineHeight   float64 `json:"lineHeight"`
	BaseFontSize float64 `json:"baseFontSize"`
	BoldDelta    float64 `json:"boldDelta"`
	ItalicSkew   float64 `json:"italicSkew"`
	Color        Color   `json:"color"`
}

// DefaultConfig 返回默认参数：600x800 页面，边距 50，行宽 500，行高 24，字号 12。
func DefaultConfig() Config {
	return Config{
		PageWidth:    600,
		PageHeight:   800,
		MaxWidth:     500,
		Margin:       50,
		LineHeight:   24,
		BaseFontSize: 12,
		BoldDelta:    2,
		ItalicSkew:   0.2,
		Color:        Black,
	}
}

// Validate 检查参数并返回补全后的副本（PageWidth 为 0 时取 MaxWidth + 2*Margin）。
func (c Config) Validate() (Config, error) {
	checks := []struct {
		field string
		ok    bool
		why   string
	}{
		{"maxWidth", c.MaxWidth > 0, "must be positive"},
		{"margin", c.Margin >= 0, "must not be negative"},
		{"pageHeight", c.PageHeight > 2*c.Margin, "must exceed twice the margin"},
		{"lineHeight", c.LineHeight > 0, "must be positive"},
		{"baseFontSize", c.BaseFontSize > 0, "must be positive"},
		{"pageWidth", c.PageWidth >= 0, "must not be negative"},
		{"boldDelta", c.BoldDelta >= 0, "must not be negative"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return c, &ConfigError{Field: chk.field, Reason: chk.why}
		}
	}
	for name, v := range map[string]float64{
		"pageWidth": c.PageWidth, "pageHeight": c.PageHeight, "maxWidth": c.MaxWidth,
		"margin": c.Margin, "lineHeight": c.LineHeight, "baseFontSize": c.BaseFontSize,
		"boldDelta": c.BoldDelta, "italicSkew": c.ItalicSkew,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return c, &ConfigError{Field: name, Reason: "must be finite"}
		}
	}
	if c.PageWidth == 0 {
		c.PageWidth = c.MaxWidth + 2*c.Margin
	}
	return c, nil
}
