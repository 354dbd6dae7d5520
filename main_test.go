package main

import (
	"os"
	"path/filepath"
	"testing"

	canvasrenderer "github.com/ByLCY/inkpost/renderer/canvas"
)

func TestCLIConfig(t *testing.T) {
	cfg, err := cliOptions{margin: "20", lineHeight: "1.5x", size: 10}.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Margin != 20 || cfg.MaxWidth != 560 || cfg.LineHeight != 15 || cfg.BaseFontSize != 10 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	cfg, err = cliOptions{maxWidth: "100mm", margin: "10mm"}.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.PageWidth != 0 {
		t.Fatalf("page width should be derived later, got %v", cfg.PageWidth)
	}
	if cfg.MaxWidth < 283 || cfg.MaxWidth > 284 {
		t.Fatalf("max width = %v, want about 283.46pt", cfg.MaxWidth)
	}

	if _, err := (cliOptions{lineHeight: "tall"}).config(); err == nil {
		t.Fatalf("expected error for invalid line height")
	}
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(in, []byte("Hello **world**\n\n_bye_"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	opts := cliOptions{
		input:       in,
		output:      filepath.Join(dir, "out", "doc.pdf"),
		previewPath: filepath.Join(dir, "out", "doc.png"),
		debugPath:   filepath.Join(dir, "out", "doc.json"),
	}
	r, err := canvasrenderer.NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := run(opts, nil, r, r); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, path := range []string{opts.output, opts.previewPath, opts.debugPath} {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("missing output %s: %v", path, err)
		}
	}
}
