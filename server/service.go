package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/inkpost/binding"
	"github.com/ByLCY/inkpost/delivery"
	"github.com/ByLCY/inkpost/fonts"
	"github.com/ByLCY/inkpost/layout"
	"github.com/ByLCY/inkpost/renderer"
	"github.com/ByLCY/inkpost/renderer/preview"
)

const (
	defaultDocumentTitle = "document.pdf"
	defaultParseMode     = "HTML"
	pdfMimeType          = "application/pdf"
)

// Options wires the service to its collaborators.
type Options struct {
	Metrics         layout.FontMetrics
	PDF             renderer.Renderer
	Preview         *preview.Renderer
	Fonts           *fonts.Set
	Sink            delivery.Sink
	Store           *TempStore
	DeliveryTimeout time.Duration
	Logger          *log.Logger
}

// Service 负责排版、渲染、暂存与投递，不关心 HTTP 细节。
type Service struct {
	metrics         layout.FontMetrics
	pdf             renderer.Renderer
	preview         *preview.Renderer
	fonts           *fonts.Set
	sink            delivery.Sink
	store           *TempStore
	deliveryTimeout time.Duration
	logger          *log.Logger
	now             func() time.Time
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		metrics:         opts.Metrics,
		pdf:             opts.PDF,
		preview:         opts.Preview,
		fonts:           opts.Fonts,
		sink:            opts.Sink,
		store:           opts.Store,
		deliveryTimeout: opts.DeliveryTimeout,
		logger:          logger,
		now:             time.Now,
	}
}

// LayoutParams 是请求中可选的排版参数，缺省值来自 layout.DefaultConfig。
type LayoutParams struct {
	FontSize   *float64  `json:"font_size"`
	LineHeight *float64  `json:"line_height"`
	Margin     *float64  `json:"margin"`
	Margins    []float64 `json:"margins"`
	MaxWidth   *float64  `json:"max_width"`
	PageWidth  *float64  `json:"page_width"`
	PageHeight *float64  `json:"page_height"`
	Markup     *bool     `json:"markup"`
	Emoji      *bool     `json:"emoji"`
}

// config 合并请求参数。margins 为 [left, top, right, bottom]，取其中最大值作为统一边距。
// 只给出 margin 而没有给出 max_width 时，行宽随页宽自动收缩。
func (p LayoutParams) config() (layout.Config, layout.Features, error) {
	cfg := layout.DefaultConfig()
	feats := layout.DefaultFeatures()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&cfg.BaseFontSize, p.FontSize)
	set(&cfg.LineHeight, p.LineHeight)
	set(&cfg.PageWidth, p.PageWidth)
	set(&cfg.PageHeight, p.PageHeight)
	if len(p.Margins) > 0 {
		if len(p.Margins) != 4 {
			return cfg, feats, invalidRequest("margins must contain four values")
		}
		m := 0.0
		for _, v := range p.Margins {
			m = math.Max(m, v)
		}
		cfg.Margin = m
	}
	set(&cfg.Margin, p.Margin)
	if p.MaxWidth != nil {
		cfg.MaxWidth = *p.MaxWidth
	} else if cfg.PageWidth > 0 {
		cfg.MaxWidth = cfg.PageWidth - 2*cfg.Margin
	}
	if p.Markup != nil {
		feats.Markup = *p.Markup
	}
	if p.Emoji != nil {
		feats.Emoji = *p.Emoji
	}
	return cfg, feats, nil
}

// Compose 排版并渲染 PDF。
func (s *Service) Compose(text string, params LayoutParams, meta layout.DocumentMeta) (*layout.Document, []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, invalidRequest("text is required")
	}
	doc, err := s.build(text, params, meta)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.pdf.Render(doc)
	if err != nil {
		return nil, nil, &layout.CollaboratorError{Collaborator: layout.CollaboratorRenderer, Op: "render", Err: err}
	}
	return doc, pdf, nil
}

func (s *Service) build(text string, params LayoutParams, meta layout.DocumentMeta) (*layout.Document, error) {
	cfg, feats, err := params.config()
	if err != nil {
		return nil, err
	}
	if meta.Creator == "" {
		meta.Creator = "inkpost"
	}
	return layout.Build(text, layout.BuildOptions{
		Config:   cfg,
		Features: feats,
		Metrics:  s.metrics,
		Fonts:    s.fonts,
		Meta:     meta,
	})
}

// GenerateResult 是暂存 PDF 的位置。
type GenerateResult struct {
	Name      string
	ExpiresAt time.Time
	Pages     int
}

// Generate 生成 PDF 并放入临时存储。
func (s *Service) Generate(text string, params LayoutParams, title string) (GenerateResult, error) {
	doc, pdf, err := s.Compose(text, params, layout.DocumentMeta{Title: title})
	if err != nil {
		return GenerateResult{}, err
	}
	name, expires, err := s.store.Put(pdf)
	if err != nil {
		return GenerateResult{}, err
	}
	s.logger.Debug("pdf stored", "name", name, "bytes", len(pdf), "pages", len(doc.Pages))
	return GenerateResult{Name: name, ExpiresAt: expires, Pages: len(doc.Pages)}, nil
}

// Fetch 读取暂存的 PDF。
func (s *Service) Fetch(name string) ([]byte, error) {
	return s.store.Get(name)
}

// Preview 渲染第 page 页的 PNG。
func (s *Service) Preview(text string, params LayoutParams, page int) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidRequest("text is required")
	}
	if page < 0 {
		return nil, invalidRequest("page must not be negative")
	}
	doc, err := s.build(text, params, layout.DocumentMeta{})
	if err != nil {
		return nil, err
	}
	if page >= len(doc.Pages) {
		return nil, invalidRequest("page %d out of range (document has %d pages)", page, len(doc.Pages))
	}
	png, err := s.preview.RenderPage(doc, page)
	if err != nil {
		return nil, &layout.CollaboratorError{Collaborator: layout.CollaboratorRenderer, Op: "preview", Err: err}
	}
	return png, nil
}

// SendRequest 是投递请求，ChatID 可以是字符串或数字。
type SendRequest struct {
	Text                string
	Params              LayoutParams
	ChatID              any
	BotToken            string
	DocumentTitle       string
	Caption             string
	ParseMode           string
	DisableNotification bool
	ProtectContent      bool
	Options             map[string]any
}

// SendResult 是投递成功后返回给调用方的摘要。
type SendResult struct {
	MessageID int64                 `json:"message_id"`
	Document  delivery.FileMetadata `json:"document"`
	Date      int64                 `json:"date"`
}

// Send 生成 PDF 并投递给聊天平台。
func (s *Service) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	chatID, err := chatIDString(req.ChatID)
	if err != nil {
		return SendResult{}, err
	}
	if strings.TrimSpace(req.Text) == "" || chatID == "" || strings.TrimSpace(req.BotToken) == "" {
		return SendResult{}, invalidRequest("required parameters: text, chat_id, bot_token")
	}
	title := req.DocumentTitle
	if title == "" {
		title = defaultDocumentTitle
	}
	parseMode := req.ParseMode
	if parseMode == "" {
		parseMode = defaultParseMode
	}

	doc, pdf, err := s.Compose(req.Text, req.Params, layout.DocumentMeta{Title: strings.TrimSuffix(title, ".pdf")})
	if err != nil {
		return SendResult{}, err
	}
	caption := binding.Interpolate(req.Caption, binding.Facts(doc, title, len(pdf), s.now()))

	if s.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deliveryTimeout)
		defer cancel()
	}
	res, err := s.sink.SendDocument(ctx, delivery.Document{
		FileName:            title,
		MimeType:            pdfMimeType,
		Data:                pdf,
		ChatID:              chatID,
		BotToken:            req.BotToken,
		Caption:             caption,
		ParseMode:           parseMode,
		DisableNotification: req.DisableNotification,
		ProtectContent:      req.ProtectContent,
		Options:             req.Options,
	})
	if err != nil {
		return SendResult{}, err
	}
	s.logger.Info("document delivered", "chat_id", chatID, "message_id", res.MessageID, "bytes", len(pdf), "pages", len(doc.Pages))

	return SendResult{
		MessageID: res.MessageID,
		Document: delivery.FileMetadata{
			FileName: title,
			FileSize: int64(len(pdf)),
			MimeType: pdfMimeType,
		},
		Date: res.Date,
	}, nil
}

func chatIDString(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(id), nil
	case json.Number:
		return id.String(), nil
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	default:
		return "", invalidRequest("chat_id must be a string or a number")
	}
}
