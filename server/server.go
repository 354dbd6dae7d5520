// Package server 提供 PDF 生成、预览与投递的 HTTP 服务。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/inkpost/config"
	"github.com/ByLCY/inkpost/delivery"
	"github.com/ByLCY/inkpost/fonts"
	canvasrenderer "github.com/ByLCY/inkpost/renderer/canvas"
	"github.com/ByLCY/inkpost/renderer/preview"
)

const (
	previewScale   = 1.5
	sweepInterval  = time.Minute
	readTimeout    = 15 * time.Second
	shutdownPeriod = 10 * time.Second
)

// Runtime wires config, renderers and the HTTP handler as a testable unit.
type Runtime struct {
	cfg    config.Config
	log    *log.Logger
	store  *TempStore
	server *http.Server
}

func New(cfg config.Config, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}
	set, err := fonts.LoadSet(cfg.Fonts)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	store, err := NewTempStore(cfg.TempDir, cfg.TempTTL)
	if err != nil {
		return nil, err
	}

	pdf, err := canvasrenderer.NewRenderer(set)
	if err != nil {
		return nil, fmt.Errorf("load fonts into renderer: %w", err)
	}
	svc := NewService(Options{
		Metrics:         pdf,
		PDF:             pdf,
		Preview:         preview.NewRenderer(set, previewScale),
		Fonts:           set,
		Sink:            delivery.NewTelegram(cfg.TelegramAPI, &http.Client{Timeout: cfg.DeliveryTimeout}),
		Store:           store,
		DeliveryTimeout: cfg.DeliveryTimeout,
		Logger:          logger,
	})
	handler := NewHandler(svc, HandlerOptions{
		Logger:       logger,
		MaxBodyBytes: int64(cfg.MaxBodyBytes),
		ExposeErrors: cfg.ExposeErrors,
		PublicURL:    cfg.PublicURL,
	})

	return &Runtime{
		cfg:   cfg,
		log:   logger,
		store: store,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: readTimeout,
		},
	}, nil
}

func (r *Runtime) Address() string {
	return r.server.Addr
}

func (r *Runtime) Run(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	go r.store.RunSweeper(ctx, sweepInterval, func(removed int) {
		r.log.Debug("expired pdfs removed", "count", removed)
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		_ = r.server.Shutdown(shutdownCtx)
	}()

	r.log.Info("startup",
		"addr", r.cfg.Addr,
		"temp_dir", r.cfg.TempDir,
		"temp_ttl", r.cfg.TempTTL,
		"max_body_bytes", r.cfg.MaxBodyBytes,
		"delivery_timeout", r.cfg.DeliveryTimeout,
	)
	err := r.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) || err == nil {
		return nil
	}
	return err
}
