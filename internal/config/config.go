package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Storage
	UploadDir      string
	ExportDir      string
	MaxUploadBytes int64
	FixedVideo     string

	// Mind maps
	MaxTreeDepth    int
	AnalyzerPayload string

	// Sessions
	SessionBackend string
	SessionTTL     time.Duration
	SessionCookie  string

	// Redis session backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting for upload and chat
	RateLimitRPS   float64
	RateLimitBurst int

	// Housekeeping
	ExportTTL       time.Duration
	JanitorInterval time.Duration

	LogLevel string
}

// Load reads configuration from defaults, an optional file named by
// VIDMIND_CONFIG, and VIDMIND_* environment variables, in increasing order
// of precedence. PORT is honoured as well as VIDMIND_PORT.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", "5000")
	v.SetDefault("upload_dir", "data/uploads")
	v.SetDefault("export_dir", "data/exports")
	v.SetDefault("max_upload_bytes", int64(500*1024*1024))
	v.SetDefault("fixed_video", "test2.mp4")
	v.SetDefault("max_tree_depth", 64)
	v.SetDefault("analyzer_payload", "canned")
	v.SetDefault("session_backend", "memory")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("session_cookie", "vidmind_session")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("rate_limit_rps", 2.0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("export_ttl", 24*time.Hour)
	v.SetDefault("janitor_interval", 5*time.Minute)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("VIDMIND")
	v.AutomaticEnv()
	if err := v.BindEnv("port", "VIDMIND_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	if path := os.Getenv("VIDMIND_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Port: v.GetString("port"),

		UploadDir:      v.GetString("upload_dir"),
		ExportDir:      v.GetString("export_dir"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		FixedVideo:     v.GetString("fixed_video"),

		MaxTreeDepth:    v.GetInt("max_tree_depth"),
		AnalyzerPayload: v.GetString("analyzer_payload"),

		SessionBackend: strings.ToLower(v.GetString("session_backend")),
		SessionTTL:     v.GetDuration("session_ttl"),
		SessionCookie:  v.GetString("session_cookie"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),

		ExportTTL:       v.GetDuration("export_ttl"),
		JanitorInterval: v.GetDuration("janitor_interval"),

		LogLevel: v.GetString("log_level"),
	}

	if cfg.MaxTreeDepth <= 0 {
		cfg.MaxTreeDepth = 64
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "vidmind_session"
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("VIDMIND_PORT is required")
	}
	if c.UploadDir == "" || c.ExportDir == "" {
		return fmt.Errorf("VIDMIND_UPLOAD_DIR and VIDMIND_EXPORT_DIR are required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("VIDMIND_MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	switch c.SessionBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("VIDMIND_REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("VIDMIND_SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("VIDMIND_SESSION_TTL must be positive")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("VIDMIND_RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("VIDMIND_RATE_LIMIT_BURST must be at least 1 when rate limiting is on")
	}
	if c.ExportTTL <= 0 {
		return fmt.Errorf("VIDMIND_EXPORT_TTL must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("VIDMIND_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
