package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/inkpost/delivery"
	"github.com/ByLCY/inkpost/layout"
)

const defaultMaxBodyBytes = 1 << 20

// HandlerOptions 控制 HTTP 层的行为。
type HandlerOptions struct {
	Logger       *log.Logger
	MaxBodyBytes int64
	// ExposeErrors 为 true 时在错误响应中附带底层错误信息。
	ExposeErrors bool
	// PublicURL 用于拼接 pdfUrl，为空时取请求的 scheme 与 Host。
	PublicURL string
}

type Handler struct {
	svc  *Service
	opts HandlerOptions
	log  *log.Logger
}

func NewHandler(svc *Service, opts HandlerOptions) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &Handler{svc: svc, opts: opts, log: logger}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate-pdf", h.generatePDF)
	mux.HandleFunc("/api/send-pdf", h.sendPDF)
	mux.HandleFunc("/api/preview", h.preview)
	mux.HandleFunc("/api/temp-pdf/", h.tempPDF)
	return h.instrument(withCORS(mux))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(observer, r)
		h.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", observer.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

type statusObserver struct {
	http.ResponseWriter
	status int
}

func (o *statusObserver) WriteHeader(status int) {
	o.status = status
	o.ResponseWriter.WriteHeader(status)
}

type generateBody struct {
	Text          string `json:"text"`
	DocumentTitle string `json:"document_title"`
	LayoutParams
}

func (h *Handler) generatePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logRejection(r, "generate_pdf", "method_not_allowed", "")
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", "")
		return
	}
	var req generateBody
	if err := h.decodeJSONBody(w, r, &req, true); err != nil {
		h.logRejection(r, "generate_pdf", "bad_json", err.Error())
		return
	}
	res, err := h.svc.Generate(req.Text, req.LayoutParams, req.DocumentTitle)
	if err != nil {
		h.logRejection(r, "generate_pdf", "generate_failed", err.Error())
		h.writeMappedErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"pdfUrl":    h.baseURL(r) + "/api/temp-pdf/" + res.Name,
		"expiresAt": res.ExpiresAt.UTC().Format(time.RFC3339),
		"pages":     res.Pages,
	})
}

type sendBody struct {
	Text                string `json:"text"`
	ChatID              any    `json:"chat_id"`
	BotToken            string `json:"bot_token"`
	DocumentTitle       string `json:"document_title"`
	Caption             string `json:"caption"`
	ParseMode           string `json:"parse_mode"`
	DisableNotification bool   `json:"disable_notification"`
	ProtectContent      bool   `json:"protect_content"`

	ReplyParameters             any `json:"reply_parameters"`
	ReplyMarkup                 any `json:"reply_markup"`
	MessageThreadID             any `json:"message_thread_id"`
	Thumbnail                   any `json:"thumbnail"`
	CaptionEntities             any `json:"caption_entities"`
	DisableContentTypeDetection any `json:"disable_content_type_detection"`
	AllowSendingWithoutReply    any `json:"allow_sending_without_reply"`
	HasSpoiler                  any `json:"has_spoiler"`
	MessageEffectID             any `json:"message_effect_id"`
	BusinessConnectionID        any `json:"business_connection_id"`

	LayoutParams
}

// passthrough 收集请求中出现的透传字段，键名与 delivery.PassthroughFields 一致。
func (b sendBody) passthrough() map[string]any {
	values := []any{
		b.ReplyParameters, b.ReplyMarkup, b.MessageThreadID, b.Thumbnail,
		b.CaptionEntities, b.DisableContentTypeDetection, b.AllowSendingWithoutReply,
		b.HasSpoiler, b.MessageEffectID, b.BusinessConnectionID,
	}
	opts := make(map[string]any)
	for i, name := range delivery.PassthroughFields {
		if values[i] != nil {
			opts[name] = values[i]
		}
	}
	return opts
}

func (h *Handler) sendPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logRejection(r, "send_pdf", "method_not_allowed", "")
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", "")
		return
	}
	var req sendBody
	if err := h.decodeJSONBody(w, r, &req, false); err != nil {
		h.logRejection(r, "send_pdf", "bad_json", err.Error())
		return
	}
	res, err := h.svc.Send(r.Context(), SendRequest{
		Text:                req.Text,
		Params:              req.LayoutParams,
		ChatID:              req.ChatID,
		BotToken:            req.BotToken,
		DocumentTitle:       req.DocumentTitle,
		Caption:             req.Caption,
		ParseMode:           req.ParseMode,
		DisableNotification: req.DisableNotification,
		ProtectContent:      req.ProtectContent,
		Options:             req.passthrough(),
	})
	if err != nil {
		h.logRejection(r, "send_pdf", "send_failed", err.Error())
		h.writeMappedErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

type previewBody struct {
	Text string `json:"text"`
	Page int    `json:"page"`
	LayoutParams
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logRejection(r, "preview", "method_not_allowed", "")
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", "")
		return
	}
	var req previewBody
	if err := h.decodeJSONBody(w, r, &req, true); err != nil {
		h.logRejection(r, "preview", "bad_json", err.Error())
		return
	}
	png, err := h.svc.Preview(req.Text, req.LayoutParams, req.Page)
	if err != nil {
		h.logRejection(r, "preview", "preview_failed", err.Error())
		h.writeMappedErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) tempPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logRejection(r, "temp_pdf", "method_not_allowed", "")
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", "")
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/temp-pdf/"), "/")
	data, err := h.svc.Fetch(name)
	if err != nil {
		h.logRejection(r, "temp_pdf", "fetch_failed", name)
		h.writeMappedErr(w, err)
		return
	}
	w.Header().Set("Content-Type", pdfMimeType)
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.opts.PublicURL != "" {
		return h.opts.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *Handler) logRejection(r *http.Request, operation, reason, details string) {
	h.log.Warn("request rejected",
		"operation", operation,
		"method", r.Method,
		"path", r.URL.Path,
		"reason", reason,
		"details", details,
		"remote", r.RemoteAddr,
	)
}

// decodeJSONBody 读取恰好一个 JSON 对象。strict 为 false 时忽略未知字段，
// send-pdf 用它兼容只多带了几个平台字段的旧客户端。
func (h *Handler) decodeJSONBody(w http.ResponseWriter, r *http.Request, target any, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	dec.UseNumber()

	if err := dec.Decode(target); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			writeErr(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds max size", "")
		case strings.Contains(err.Error(), "unknown field"):
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request contains unknown fields", h.details(err))
		default:
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON", h.details(err))
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must contain exactly one JSON object", "")
		if err == nil {
			err = errors.New("trailing data after JSON object")
		}
		return err
	}
	return nil
}

func (h *Handler) details(err error) string {
	if !h.opts.ExposeErrors || err == nil {
		return ""
	}
	return err.Error()
}

func (h *Handler) writeMappedErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		writeErr(w, http.StatusBadRequest, "INVALID_REQUEST", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "), "")
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "file not found or expired", "")
		return
	}
	var cfgErr *layout.ConfigError
	if errors.As(err, &cfgErr) {
		writeErr(w, http.StatusBadRequest, "INVALID_CONFIG", cfgErr.Error(), "")
		return
	}
	var collab *layout.CollaboratorError
	if errors.As(err, &collab) && collab.Collaborator == layout.CollaboratorDelivery {
		message := "document delivery failed"
		var apiErr *delivery.APIError
		if errors.As(err, &apiErr) && apiErr.Description != "" {
			message = apiErr.Description
		}
		writeErr(w, http.StatusBadGateway, "DELIVERY_FAILED", message, h.details(err))
		return
	}
	writeErr(w, http.StatusInternalServerError, "PDF_GENERATION_FAILED", "PDF generation failed", h.details(err))
}

func writeErr(w http.ResponseWriter, status int, code, message, details string) {
	body := map[string]any{"success": false, "code": code, "error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
