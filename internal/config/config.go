package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the server. Every field has a default
// that reproduces the baseline behavior; nothing is required.
type Config struct {
	HTTPPort         int
	TempDir          string
	StaticDir        string
	FFmpegPath       string
	MagickPath       string
	MaxUploadBytes   int64
	ConvertTimeout   time.Duration
	HealthTimeout    time.Duration
	PreserveMetadata bool
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTPPort = getEnvInt("HTTP_PORT", 8080)
	cfg.TempDir = getEnv("TEMP_DIR", os.TempDir())
	cfg.StaticDir = getEnv("STATIC_DIR", "./static")
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", "ffmpeg")
	cfg.MagickPath = getEnv("MAGICK_PATH", "magick")
	cfg.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", 250*1024*1024)
	cfg.ConvertTimeout = time.Duration(getEnvInt("CONVERT_TIMEOUT_SEC", 300)) * time.Second
	cfg.HealthTimeout = time.Duration(getEnvInt("HEALTH_TIMEOUT_SEC", 5)) * time.Second
	cfg.PreserveMetadata = getEnvBool("PRESERVE_METADATA", true)
	return cfg
}

func (c *Config) HTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
