package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	LogLevel             string
	Port                 string
	AWSRegion            string
	BedrockRegion        string
	Bucket               string
	StoragePath          string
	GenFunctionName      string
	SubmitTimeout        time.Duration
	PresignDefault       time.Duration
	DatabaseURL          string
	GeoIPDBPath          string
	DefaultLocale        string
	CORSAllowedOrigins   []string
	AllowedSignUpDomains []string
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	region := getEnv("AWS_REGION", "us-east-1")
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "production"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		Port:                 getEnv("PORT", "8000"),
		AWSRegion:            region,
		BedrockRegion:        getEnv("BEDROCK_REGION", region),
		Bucket:               os.Getenv("VTO_BUCKET"),
		StoragePath:          os.Getenv("STORAGE_PATH"),
		GenFunctionName:      os.Getenv("VTO_GEN_FUNCTION_NAME"),
		SubmitTimeout:        time.Second * time.Duration(getEnvInt("SUBMIT_TIMEOUT_SECONDS", 10)),
		PresignDefault:       time.Second * time.Duration(getEnvInt("PRESIGN_DEFAULT_SECONDS", 900)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		GeoIPDBPath:          os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:        getEnv("DEFAULT_LOCALE", "en"),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedSignUpDomains: parseDomainList(os.Getenv("ALLOWED_SIGN_UP_EMAIL_DOMAINS_STR")),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.Bucket == "" && cfg.StoragePath == "" {
		return nil, fmt.Errorf("VTO_BUCKET or STORAGE_PATH is required")
	}

	return cfg, nil
}

// LoadSignUpConfig reads only the keys the sign-up trigger needs.
func LoadSignUpConfig() *Config {
	return &Config{
		AppEnv:               getEnv("APP_ENV", "production"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		AllowedSignUpDomains: parseDomainList(os.Getenv("ALLOWED_SIGN_UP_EMAIL_DOMAINS_STR")),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// parseDomainList decodes a JSON array of domains. Invalid JSON yields an empty list,
// which the sign-up gate treats as "allow everyone".
func parseDomainList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var domains []string
	if err := json.Unmarshal([]byte(raw), &domains); err != nil {
		return nil
	}
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	return out
}
