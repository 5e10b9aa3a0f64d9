package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ExpiryPolicyFreezeOnConfirm = "freeze_on_confirm"
	ExpiryPolicyExpireUnsettled = "expire_unsettled"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Deal        DealConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type StorageConfig struct {
	// Driver is one of firestore, postgres, mysql, sqlite.
	Driver          string
	DSN             string
	FirebaseProject string
	CredentialsFile string
	CredentialsJSON string
}

type AuthConfig struct {
	// Provider is firebase or jwt.
	Provider     string
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	AdminUserIDs []string
}

type DealConfig struct {
	FeeRateBasisPoints int64
	ExpiryWindow       time.Duration
	ExpiryPolicy       string
	SweepInterval      time.Duration
	SweepBatch         int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type RateLimitConfig struct {
	MessagesPerMinute int
	RequestsPerMinute int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	feeRate, err := getEnvAsFloat("SUPPLIER_FEE_RATE", 0.03)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			// empty allows any origin
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "firestore"),
			DSN:             getEnv("DATABASE_DSN", ""),
			FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
			CredentialsJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		},
		Auth: AuthConfig{
			Provider:     getEnv("AUTH_PROVIDER", "firebase"),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTIssuer:    getEnv("JWT_ISSUER", "b2bmarket"),
			JWTTTL:       getEnvAsDuration("JWT_TTL", 24*time.Hour),
			AdminUserIDs: getEnvAsList("ADMIN_USER_IDS"),
		},
		Deal: DealConfig{
			FeeRateBasisPoints: int64(math.Round(feeRate * 10000)),
			ExpiryWindow:       getEnvAsDuration("ROOM_EXPIRY_WINDOW", 72*time.Hour),
			ExpiryPolicy:       getEnv("ROOM_EXPIRY_POLICY", ExpiryPolicyFreezeOnConfirm),
			SweepInterval:      getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
			SweepBatch:         getEnvAsInt("EXPIRY_SWEEP_BATCH", 100),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBIT_URL", ""),
			Exchange: getEnv("RABBIT_EXCHANGE", "deal.events"),
		},
		RateLimit: RateLimitConfig{
			MessagesPerMinute: getEnvAsInt("MESSAGES_PER_MINUTE", 30),
			RequestsPerMinute: getEnvAsInt("REQUESTS_PER_MINUTE", 300),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(feeRate); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate(feeRate float64) error {
	switch c.Storage.Driver {
	case "firestore":
		if c.Storage.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID must be set for the firestore driver")
		}
	case "postgres", "mysql", "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("DATABASE_DSN must be set for the %s driver", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Auth.Provider {
	case "firebase":
		if c.Storage.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID must be set for firebase auth")
		}
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set for jwt auth")
		}
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}

	if feeRate < 0 || feeRate > 1 {
		return fmt.Errorf("SUPPLIER_FEE_RATE must be within [0, 1], got %v", feeRate)
	}

	switch c.Deal.ExpiryPolicy {
	case ExpiryPolicyFreezeOnConfirm, ExpiryPolicyExpireUnsettled:
	default:
		return fmt.Errorf("unknown room expiry policy %q", c.Deal.ExpiryPolicy)
	}

	if c.Deal.ExpiryWindow <= 0 {
		return fmt.Errorf("ROOM_EXPIRY_WINDOW must be positive")
	}

	return nil
}

func (c *Config) IsAdmin(uid string) bool {
	for _, id := range c.Auth.AdminUserIDs {
		if id == uid {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
