package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/local/studyai/api/genai"
)

type Config struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	LogLevel    string
	CORSOrigins []string

	OTelEnabled      bool
	OTelSamplerRatio float64
	OTelEndpoint     string

	MindMapFont string
}

// Load reads .env and the environment. Everything except the API key has a
// default; a missing key is a ConfigurationError.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", genai.DefaultModel),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", genai.DefaultBaseURL),
		GeminiTimeout:    getEnvDuration("GEMINI_TIMEOUT_SECONDS", 60*time.Second),
		Port:             getEnv("PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBPath:           getEnv("DB_PATH", "./storage/studyai.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		OTelEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTelSamplerRatio: getEnvFloat("OTEL_SAMPLER_RATIO", 1.0),
		OTelEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		MindMapFont:      getEnv("MINDMAP_FONT", ""),
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return cfg, &genai.ConfigurationError{Missing: "GEMINI_API_KEY"}
	}
	return cfg, nil
}

// DSN is the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration reads a whole number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if n := getEnvInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
