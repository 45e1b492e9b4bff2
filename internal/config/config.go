package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every environment-backed setting in one place.
// Load it once in main; service singletons read via the package-level
// Get() when they are built lazily.
type Config struct {
	Port        string
	DatabaseURL string
	SiteURL     string

	JWTSecret     string
	AccessExpire  time.Duration // access token lifetime
	RefreshExpire time.Duration // refresh token lifetime

	GoogleClientID     string
	GoogleClientSecret string

	UploadDir string // static-served profile image directory

	NewsBaseURL string // upstream news feed, proxied as-is
}

var cfg *Config

func Load() *Config {
	cfg = &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=newsreader port=5432 sslmode=disable"),
		SiteURL:            getEnv("SITE_URL", "http://localhost:8080"),
		JWTSecret:          getEnv("JWT_SECRET", "change_me_in_production"),
		AccessExpire:       getDurationDays("JWT_EXPIRE_DAYS", 7),
		RefreshExpire:      getDurationDays("JWT_REFRESH_EXPIRE_DAYS", 30),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		NewsBaseURL:        getEnv("NEWS_BASE_URL", "https://berita-indo-api-next.vercel.app/api/cnn-news"),
	}
	return cfg
}

// Get returns the loaded config, loading from the environment on first use.
func Get() *Config {
	if cfg == nil {
		return Load()
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationDays(key string, fallback int) time.Duration {
	days := fallback
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}
