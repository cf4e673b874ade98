package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSteamAPIURL = "https://store.steampowered.com/api/appdetails"

type Config struct {
	Port           string
	Environment    string
	DatabaseURL    string
	AllowedOrigins []string
	ServiceToken   string

	SteamAPIURL   string
	SteamTimeout  time.Duration
	SteamCountry  string
	SteamLanguage string

	ResyncInterval time.Duration
	SyncBatchMax   int

	R2 R2Config
}

// R2Config holds the Cloudflare R2 credentials used to mirror header images.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether every credential needed for uploads is present.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "5200"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ServiceToken:  getEnv("SERVICE_TOKEN", ""),
		SteamAPIURL:   getEnv("STEAM_API_URL", DefaultSteamAPIURL),
		SteamCountry:  getEnv("STEAM_COUNTRY", ""),
		SteamLanguage: getEnv("STEAM_LANGUAGE", ""),
		R2: R2Config{
			AccountID:       getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          getEnv("R2_BUCKET_NAME", ""),
			CDNBaseURL:      getEnv("CDN_BASE_URL", ""),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable not set")
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.SteamTimeout, err = getEnvAsDuration("STEAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResyncInterval, err = getEnvAsDuration("RESYNC_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SyncBatchMax, err = getEnvAsInt("SYNC_BATCH_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.SyncBatchMax <= 0 {
		return nil, fmt.Errorf("SYNC_BATCH_MAX must be positive, got %d", cfg.SyncBatchMax)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvAsDuration accepts Go durations ("90s") and a bare "0" to disable.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
