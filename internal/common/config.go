package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	OCR        OCRConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr             string
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
}

// DatabaseConfig holds database-related configuration. DSN may be empty, in
// which case the service runs without persistence.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	Lang        string
	TessdataDir string
	PSM         int
	OEM         int
}

// LLMConfig holds the Groq extractor configuration. An empty APIKey disables
// the LLM path and the service falls back to the heuristic pipeline.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ExtractionConfig holds pipeline tunables surfaced to the environment.
type ExtractionConfig struct {
	RowYThreshold       float64
	OutlierSigma        float64
	LowConfidenceCutoff float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             getEnv("HTTP_ADDR", ":8000"),
			DownloadTimeout:  getEnvAsDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
			MaxDownloadBytes: getEnvAsInt64("MAX_DOWNLOAD_BYTES", 20<<20),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("TESSERACT_PSM", 6),
			OEM:         getEnvAsInt("TESSERACT_OEM", 0),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_BASE_URL", ""),
			Model:       getEnv("GROQ_MODEL", ""),
			Temperature: getEnvAsFloat32("GROQ_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", 45*time.Second),
		},
		Extraction: ExtractionConfig{
			RowYThreshold:       getEnvAsFloat64("ROW_Y_THRESHOLD", 18),
			OutlierSigma:        getEnvAsFloat64("OUTLIER_SIGMA", 3),
			LowConfidenceCutoff: getEnvAsFloat64("LOW_CONFIDENCE_CUTOFF", 0.85),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extraction.RowYThreshold <= 0 {
		return NewAppError("CONFIG_ERROR", "ROW_Y_THRESHOLD must be positive", ErrInvalidInput)
	}
	if c.Extraction.OutlierSigma <= 0 {
		return NewAppError("CONFIG_ERROR", "OUTLIER_SIGMA must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
