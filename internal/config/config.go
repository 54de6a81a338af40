package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port        string
	Environment string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// ApprovalChain lists role codes in approval order, e.g. "SUPERIOR,UNIT_DIRECTOR".
	ApprovalChain []string

	WorkflowTxTimeout time.Duration
	BlobTimeout       time.Duration
	NotifyTimeout     time.Duration
	NotifyMaxAttempts int

	AllowPlaceholderSignature bool
	NotificationTopic         string
	NotificationGroupID       string
}

const defaultApprovalChain = "SUPERIOR,UNIT_DIRECTOR,HR_MANAGER,HR_DIRECTOR"

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	logger := zap.L().Named("config")
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	} else {
		logger.Info("loaded .env file")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "hris_workflow"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: getEnv("KAFKA_BROKER", "localhost:9092"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:    getEnv("S3_BUCKET", "hris-signatures"),
		S3UseSSL:    getEnv("S3_USE_SSL", "false") == "true",

		ApprovalChain: splitList(getEnv("APPROVAL_CHAIN", defaultApprovalChain)),

		WorkflowTxTimeout: getDuration("WORKFLOW_TX_TIMEOUT", 5*time.Second),
		BlobTimeout:       getDuration("BLOB_TIMEOUT", 10*time.Second),
		NotifyTimeout:     getDuration("NOTIFY_TIMEOUT", 3*time.Second),
		NotifyMaxAttempts: getInt("NOTIFY_MAX_ATTEMPTS", 3),

		AllowPlaceholderSignature: getEnv("ALLOW_PLACEHOLDER_SIGNATURE", "false") == "true",
		NotificationTopic:         getEnv("NOTIFICATION_TOPIC", "hr.workflow.notification.v1"),
		NotificationGroupID:       getEnv("NOTIFICATION_GROUP_ID", "hris-workflow-notification"),
	}

	if cfg.IsProduction() && cfg.AllowPlaceholderSignature {
		logger.Warn("ALLOW_PLACEHOLDER_SIGNATURE ignored in production",
			zap.String("environment", cfg.Environment),
		)
		cfg.AllowPlaceholderSignature = false
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		zap.L().Named("config").Warn("invalid duration, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Duration("default", fallback),
		)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		zap.L().Named("config").Warn("invalid integer, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Int("default", fallback),
		)
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
