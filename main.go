package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/inkpost/config"
	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/layout"
	"github.com/ByLCY/inkpost/renderer"
	canvasrenderer "github.com/ByLCY/inkpost/renderer/canvas"
	"github.com/ByLCY/inkpost/renderer/preview"
	"github.com/ByLCY/inkpost/server"
)

// cliOptions 汇总一次性渲染所需的命令行参数。
type cliOptions struct {
	input, output, previewPath, debugPath string
	page                                  int
	title                                 string
	margin, maxWidth                      string
	pageWidth, pageHeight                 string
	lineHeight                            string
	size                                  float64
	noMarkup, noEmoji                     bool
	fonts                                 fonts.Paths
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.input, "in", "-", "输入文本路径，- 表示标准输入")
	flag.StringVar(&opts.output, "out", "output/document.pdf", "PDF 输出路径")
	flag.StringVar(&opts.previewPath, "preview", "", "PNG 预览输出路径")
	flag.IntVar(&opts.page, "page", 0, "预览的页码（从 0 开始）")
	flag.StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.title, "title", "", "PDF 标题")
	flag.StringVar(&opts.margin, "margin", "", "页边距，例如 50 或 18mm")
	flag.StringVar(&opts.maxWidth, "max-width", "", "行宽，例如 500 或 176mm")
	flag.StringVar(&opts.pageWidth, "page-width", "", "页宽，缺省为行宽加两倍边距")
	flag.StringVar(&opts.pageHeight, "page-height", "", "页高")
	flag.StringVar(&opts.lineHeight, "line-height", "", "行高，例如 24pt 或 1.5x")
	flag.Float64Var(&opts.size, "size", 0, "基础字号（pt）")
	flag.BoolVar(&opts.noMarkup, "no-markup", false, "关闭标记解析")
	flag.BoolVar(&opts.noEmoji, "no-emoji", false, "关闭 emoji 分段")
	flag.StringVar(&opts.fonts.Regular, "font", "", "常规字体文件或 embed:go-regular")
	flag.StringVar(&opts.fonts.Bold, "font-bold", "", "粗体字体文件")
	flag.StringVar(&opts.fonts.Italic, "font-italic", "", "斜体字体文件")
	flag.StringVar(&opts.fonts.BoldItalic, "font-bold-italic", "", "粗斜体字体文件")
	flag.StringVar(&opts.fonts.Emoji, "font-emoji", "", "emoji 字体文件")
	serve := flag.Bool("serve", false, "以 HTTP 服务方式运行，参数从环境变量读取")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "inkpost"})

	if *serve {
		if err := runServer(logger); err != nil {
			logger.Fatal("服务退出", "err", err)
		}
		return
	}

	set, err := fonts.LoadSet(opts.fonts)
	if err != nil {
		logger.Fatal("加载字体失败", "err", err)
	}
	r, err := canvasrenderer.NewRenderer(set)
	if err != nil {
		logger.Fatal("初始化渲染器失败", "err", err)
	}
	if err := run(opts, set, r, r); err != nil {
		logger.Fatal("生成 PDF 失败", "err", err)
	}
	logger.Info("已生成 PDF", "path", opts.output)
}

func runServer(logger *log.Logger) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	rt, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	return rt.Run(context.Background())
}

// run 串联读取、排版与渲染。
func run(opts cliOptions, set *fonts.Set, metrics layout.FontMetrics, r renderer.Renderer) error {
	if r == nil || metrics == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	text, err := readInput(opts.input)
	if err != nil {
		return err
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	features := layout.Features{Markup: !opts.noMarkup, Emoji: !opts.noEmoji}

	doc, err := layout.Build(text, layout.BuildOptions{
		Config:   cfg,
		Features: features,
		Metrics:  metrics,
		Fonts:    set,
		Meta:     layout.DocumentMeta{Title: opts.title, Creator: "inkpost"},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.debugPath != "" {
		if err := writeFile(opts.debugPath, nil, func(path string) error { return layout.WriteDebugJSON(doc, path) }); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	pdfBytes, err := r.Render(doc)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := writeFile(opts.output, pdfBytes, nil); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}

	if opts.previewPath != "" {
		png, err := preview.NewRenderer(set, 1).RenderPage(doc, opts.page)
		if err != nil {
			return fmt.Errorf("渲染预览失败: %w", err)
		}
		if err := writeFile(opts.previewPath, png, nil); err != nil {
			return fmt.Errorf("写入预览失败: %w", err)
		}
	}
	return nil
}

// config 把命令行参数合并到默认排版参数上。只给出边距或页宽时，行宽随之调整。
func (o cliOptions) config() (layout.Config, error) {
	cfg := layout.DefaultConfig()
	for _, f := range []struct {
		name, raw string
		dst       *float64
	}{
		{"margin", o.margin, &cfg.Margin},
		{"page-width", o.pageWidth, &cfg.PageWidth},
		{"page-height", o.pageHeight, &cfg.PageHeight},
	} {
		if f.raw == "" {
			continue
		}
		v, err := layout.ParseLength(f.raw)
		if err != nil {
			return cfg, fmt.Errorf("-%s: %w", f.name, err)
		}
		*f.dst = v
	}
	if o.maxWidth != "" {
		v, err := layout.ParseLength(o.maxWidth)
		if err != nil {
			return cfg, fmt.Errorf("-max-width: %w", err)
		}
		cfg.MaxWidth = v
		if o.pageWidth == "" {
			cfg.PageWidth = 0
		}
	} else if cfg.PageWidth > 0 {
		cfg.MaxWidth = cfg.PageWidth - 2*cfg.Margin
	}
	if o.size > 0 {
		cfg.BaseFontSize = o.size
	}
	if o.lineHeight != "" {
		spec, err := layout.ParseLineHeight(o.lineHeight)
		if err != nil {
			return cfg, fmt.Errorf("-line-height: %w", err)
		}
		cfg.LineHeight = spec.Resolve(cfg.BaseFontSize)
	}
	return cfg, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("无法打开输入文件 %s: %w", path, err)
	}
	return string(data), nil
}

// writeFile 创建父目录后写入 data，或交给 write 自行写入。
func writeFile(path string, data []byte, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	if write != nil {
		return write(path)
	}
	return os.WriteFile(path, data, 0o644)
}
