package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN            string
	JWTSecret      string
	AppPort        string
	AvatarBaseURL  string
	AllowedOrigins []string
	LogLevel       string
	LogFile        string
	Seed           bool
	SeedFile       string
}

const (
	defaultAvatarBaseURL = "https://ui-avatars.com/api/"
	defaultOrigins       = "http://localhost:3000,http://127.0.0.1:3000"
)

// Load reads .env (when present) and the process environment. An empty
// MYSQL_DSN selects the in-memory store.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env file not found, using system environment variables")
	} else {
		slog.Info(".env file loaded")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		DSN:           getenv("MYSQL_DSN"),
		JWTSecret:     getenv("JWT_SECRET"),
		AppPort:       getenv("APP_PORT"),
		AvatarBaseURL: getenv("AVATAR_BASE_URL"),
		LogLevel:      strings.ToLower(getenv("LOG_LEVEL")),
		LogFile:       getenv("LOG_FILE"),
		SeedFile:      getenv("SEED_FILE"),
		Seed:          true,
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.AvatarBaseURL == "" {
		cfg.AvatarBaseURL = defaultAvatarBaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if v := getenv("SEED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Seed = b
		}
	}

	origins := getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = defaultOrigins
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg
}

// InMemory reports whether no database is configured.
func (c Config) InMemory() bool { return c.DSN == "" }
