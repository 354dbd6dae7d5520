package layout

import "github.com/ByLCY/inkpost/fonts"

// BuildOptions 配置一次排版所需的参数与依赖。
type BuildOptions struct {
	Config   Config
	Features Features
	Metrics  FontMetrics
	// Fonts 为空时使用内置字体。
	Fonts *fonts.Set
	Meta  DocumentMeta
}

// Features 控制流水线中可选的阶段。
type Features struct {
	Markup bool `json:"markup"`
	Emoji  bool `json:"emoji"`
}

// DefaultFeatures 打开全部可选阶段。
func DefaultFeatures() Features {
	return Features{Markup: true, Emoji: true}
}

// FontMetrics 负责嵌入字体并测量文字宽度（pt）。
type FontMetrics interface {
	Embed(face Face, data []byte) error
	WidthOfTextAtSize(text string, size float64, face Face) float64
}
