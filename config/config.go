// Package config 从环境变量读取服务运行参数。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/inkpost/delivery"
	"github.com/ByLCY/inkpost/fonts"
)

const (
	defaultAddr            = ":8080"
	defaultTempTTL         = 5 * time.Minute
	defaultMaxBodyBytes    = 1 << 20
	maximumBodyBytes       = 64 << 20
	defaultDeliveryTimeout = 30 * time.Second
	defaultLogLevel        = "info"
)

// Config captures startup settings for the HTTP service.
type Config struct {
	Addr            string
	PublicURL       string
	TempDir         string
	TempTTL         time.Duration
	MaxBodyBytes    int
	Fonts           fonts.Paths
	TelegramAPI     string
	DeliveryTimeout time.Duration
	LogLevel        log.Level
	ExposeErrors    bool
}

// LoadFromEnv loads runtime configuration from environment variables.
func LoadFromEnv() (Config, error) {
	addr, err := readRequiredOrDefault("INKPOST_ADDR", defaultAddr)
	if err != nil {
		return Config{}, err
	}

	publicURL, err := readRequiredOrDefault("INKPOST_PUBLIC_URL", "")
	if err != nil {
		return Config{}, err
	}
	publicURL = strings.TrimRight(publicURL, "/")
	if publicURL != "" && !strings.HasPrefix(publicURL, "http://") && !strings.HasPrefix(publicURL, "https://") {
		return Config{}, fmt.Errorf("INKPOST_PUBLIC_URL must start with http:// or https://")
	}

	tempDir, err := readRequiredOrDefault("INKPOST_TEMP_DIR", filepath.Join(os.TempDir(), "inkpost"))
	if err != nil {
		return Config{}, err
	}
	cleanTempDir := filepath.Clean(tempDir)
	if cleanTempDir == "." || cleanTempDir == "/" {
		return Config{}, fmt.Errorf("INKPOST_TEMP_DIR must not resolve to %q", cleanTempDir)
	}

	tempTTL, err := readDuration("INKPOST_TEMP_TTL", defaultTempTTL)
	if err != nil {
		return Config{}, err
	}

	maxBody, err := readInt("INKPOST_MAX_BODY_BYTES", defaultMaxBodyBytes, 1024, maximumBodyBytes)
	if err != nil {
		return Config{}, err
	}

	var fontPaths fonts.Paths
	for _, slot := range []struct {
		key string
		dst *string
	}{
		{"INKPOST_FONT_REGULAR", &fontPaths.Regular},
		{"INKPOST_FONT_BOLD", &fontPaths.Bold},
		{"INKPOST_FONT_ITALIC", &fontPaths.Italic},
		{"INKPOST_FONT_BOLD_ITALIC", &fontPaths.BoldItalic},
		{"INKPOST_FONT_EMOJI", &fontPaths.Emoji},
	} {
		if *slot.dst, err = readRequiredOrDefault(slot.key, ""); err != nil {
			return Config{}, err
		}
	}

	telegramAPI, err := readRequiredOrDefault("INKPOST_TELEGRAM_API", delivery.DefaultTelegramAPI)
	if err != nil {
		return Config{}, err
	}

	deliveryTimeout, err := readDuration("INKPOST_DELIVERY_TIMEOUT", defaultDeliveryTimeout)
	if err != nil {
		return Config{}, err
	}

	levelRaw, err := readRequiredOrDefault("INKPOST_LOG_LEVEL", defaultLogLevel)
	if err != nil {
		return Config{}, err
	}
	level, err := log.ParseLevel(levelRaw)
	if err != nil {
		return Config{}, fmt.Errorf("INKPOST_LOG_LEVEL: %w", err)
	}

	exposeErrors, err := readBool("INKPOST_EXPOSE_ERRORS", false)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Addr:            addr,
		PublicURL:       publicURL,
		TempDir:         cleanTempDir,
		TempTTL:         tempTTL,
		MaxBodyBytes:    maxBody,
		Fonts:           fontPaths,
		TelegramAPI:     telegramAPI,
		DeliveryTimeout: deliveryTimeout,
		LogLevel:        level,
		ExposeErrors:    exposeErrors,
	}, nil
}

func readRequiredOrDefault(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}

	return raw, nil
}

func readInt(key string, fallback, min, max int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}

	return parsed, nil
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func readBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}
