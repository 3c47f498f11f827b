package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Identify IdentifyConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type IdentifyConfig struct {
	MaxFileSize     int64
	MaxDimension    int
	AllowedTypes    []string
	DownloadTimeout time.Duration
	TokenTTL        time.Duration
	MaxMemoryTokens int
}

// ClientConfig is read by the ecovision CLI.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 90*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("EVENTS_QUEUE", "identification_events"),
		},
		Identify: IdentifyConfig{
			MaxFileSize:     getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024), // 10MB
			MaxDimension:    getEnvAsInt("MAX_DIMENSION", 1536),
			AllowedTypes:    getList("ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/gif", "image/webp"}),
			DownloadTimeout: getDuration("DOWNLOAD_TIMEOUT", 20*time.Second),
			TokenTTL:        getDuration("TOKEN_TTL", 15*time.Minute),
			MaxMemoryTokens: getEnvAsInt("MAX_MEMORY_TOKENS", 10000),
		},
		Client: ClientConfig{
			BaseURL: strings.TrimRight(getEnv("ECOVISION_URL", "http://localhost:8080"), "/"),
			Timeout: getDuration("CLIENT_TIMEOUT", 60*time.Second),
		},
	}

	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.Identify.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.Identify.MaxFileSize))
	}
	if c.Identify.MaxDimension <= 0 {
		errs = append(errs, fmt.Errorf("MAX_DIMENSION must be positive, got %d", c.Identify.MaxDimension))
	}
	if c.Identify.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Identify.TokenTTL))
	}
	if len(c.Identify.AllowedTypes) == 0 {
		errs = append(errs, errors.New("ALLOWED_TYPES is empty"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToLower(item))
		}
	}
	return items
}
