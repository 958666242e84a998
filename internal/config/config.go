package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string
	DBPath          string
	ImageBackend    string
	ImageLocalPath  string
	ImageBaseURL    string
	S3Bucket        string
	AWSRegion       string
	AWSEndpointURL  string
	JWTSecret       string
	JWTIssuer       string
	NotifyQueueSize int
	MaxImageBytes   int64
	LogLevel        string
	LogFormat       string
	LogFile         string
}

// Load reads the environment after applying envFiles (".env" when none are
// given). Missing files are skipped; variables already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	queueSize, err := getEnvInt("NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	maxImage, err := getEnvInt("MAX_IMAGE_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "/data/lostfound.db"),
		ImageBackend:    getEnv("IMAGE_BACKEND", "local"),
		ImageLocalPath:  getEnv("IMAGE_LOCAL_PATH", "/data/images"),
		ImageBaseURL:    getEnv("IMAGE_BASE_URL", "/images"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL:  getEnv("AWS_ENDPOINT_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", ""),
		NotifyQueueSize: queueSize,
		MaxImageBytes:   int64(maxImage),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogFile:         getEnv("LOG_FILE", ""),
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.ImageBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown IMAGE_BACKEND %q (want local or s3)", c.ImageBackend)
	}
	if c.NotifyQueueSize <= 0 {
		return errors.New("NOTIFY_QUEUE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
