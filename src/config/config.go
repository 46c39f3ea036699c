package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port    int
	Host    string
	APIKey  string // shared secret checked against the X-API-Key header
	Workers int    // parallel label renders per generation run

	LogLevel  string
	LogFormat string

	// Upload handling
	MaxUploadSize int64 // bytes; larger requests are rejected with 413

	// TLS (both must be set to serve HTTPS)
	TLSCertFile string
	TLSKeyFile  string

	// Storage locations
	DatabasePath string
	BarcodeDir   string
	PDFDir       string
	UploadDir    string
	ArchiveDir   string
	LogsDir      string

	// Optional label layout overrides (YAML)
	LabelConfigPath string

	// Bound on a single generation/upload run
	BackendTimeout time.Duration

	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:    getEnvInt("PORT", 8080),
		Host:    getEnv("HOST", "0.0.0.0"),
		APIKey:  getEnv("API_KEY", ""),
		Workers: getEnvInt("WORKERS", 4),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", 10*1024*1024),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		DatabasePath: getEnv("DATABASE_PATH", "data/barcode_generator.db"),
		BarcodeDir:   getEnv("BARCODE_DIR", "downloads/barcodes"),
		PDFDir:       getEnv("PDF_DIR", "downloads/pdfs"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		ArchiveDir:   getEnv("ARCHIVE_DIR", "archive"),
		LogsDir:      getEnv("LOGS_DIR", "logs"),

		LabelConfigPath: getEnv("LABEL_CONFIG", ""),

		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT", 60)) * time.Second,

		AllowedOrigins:     splitCommaList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// TLSEnabled reports whether both certificate and key paths are configured
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func splitCommaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
