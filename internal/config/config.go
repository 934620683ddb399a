package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	GrowthByMonth = "month"
	GrowthByWeek  = "week"
)

type Config struct {
	Env                  string
	HTTPAddr             string
	LogLevel             string
	DatabaseDriver       string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string

	UploadDir      string
	MaxUploadBytes int64
	MediaCacheSize int
	MediaCacheTTL  time.Duration

	// GrowthBasis picks which month selects the development fact shown
	// with the pregnancy snapshot.
	GrowthBasis string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                  getenv("APP_ENV", "development"),
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		DatabaseDriver:       strings.ToLower(getenv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		JWTSecret:            getenv("JWT_SECRET", ""),
		UploadDir:            getenv("UPLOAD_DIR", "uploads"),
		GrowthBasis:          strings.ToLower(getenv("GROWTH_BASIS", GrowthByMonth)),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.MaxUploadBytes, err = strconv.ParseInt(getenv("MAX_UPLOAD_BYTES", "10485760"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.MediaCacheSize, err = strconv.Atoi(getenv("MEDIA_CACHE_SIZE", "1024")); err != nil {
		return Config{}, fmt.Errorf("MEDIA_CACHE_SIZE: %w", err)
	}
	if cfg.MediaCacheTTL, err = time.ParseDuration(getenv("MEDIA_CACHE_TTL", "30s")); err != nil {
		return Config{}, fmt.Errorf("MEDIA_CACHE_TTL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing env: DATABASE_URL")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing env: JWT_SECRET")
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("APP_ENV must be development or production, got %q", c.Env)
	}
	if c.GrowthBasis != GrowthByMonth && c.GrowthBasis != GrowthByWeek {
		return fmt.Errorf("GROWTH_BASIS must be month or week, got %q", c.GrowthBasis)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
