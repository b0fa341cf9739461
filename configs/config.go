package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Store     StoreConfig
	JWT       JWTConfig
	Email     EmailConfig
	Log       LogConfig
	Admission AdmissionConfig
	Probe     ProbeConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the durable key-value backend. "redis" uses the Redis
// connection above; "memory" keeps all coordination state in-process, for
// local runs and tests.
type StoreConfig struct {
	Backend string // "redis" or "memory"
	// KeyPrefix namespaces every store key for this deployment.
	KeyPrefix string
	// PersistInterval / NearLimitFraction tune how often rate-limit
	// windows are written back (see internal/infrastructure/ratelimit).
	PersistInterval   time.Duration
	NearLimitFraction float64
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	BaseURL        string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

// AdmissionPolicyConfig is one named admission policy.
type AdmissionPolicyConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	KeyPrefix         string
	SkipOnError       bool
}

type AdmissionConfig struct {
	Edge AdmissionPolicyConfig
	API  AdmissionPolicyConfig
	Auth AdmissionPolicyConfig
}

// ProbeConfig carries the per-deployment additions to the built-in probe
// rule sets, comma-separated in the environment.
type ProbeConfig struct {
	AllowedClients    []string
	BlockedPaths      []string
	BlockedExtensions []string
	BlockedUserAgents []string
	SuspiciousParams  []string
}

type CacheConfig struct {
	KeyPrefix     string
	SuggestionTTL time.Duration
	InsightTTL    time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "homewarden_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 300*time.Millisecond),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 300*time.Millisecond),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Store: StoreConfig{
			Backend:           getEnv("STORE_BACKEND", "redis"),
			KeyPrefix:         getEnv("STORE_KEY_PREFIX", "homewarden"),
			PersistInterval:   getDurationEnv("STORE_PERSIST_INTERVAL", 30*time.Second),
			NearLimitFraction: getFloatEnv("STORE_NEAR_LIMIT_FRACTION", 0.8),
		},
		JWT: JWTConfig{
			Secret:         getEnvRequired("JWT_SECRET"),
			AccessTokenTTL: getDurationEnv("JWT_ACCESS_TTL", 15*time.Minute),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:       getEnv("FROM_NAME", "HomeWarden"),
			BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Admission: AdmissionConfig{
			Edge: AdmissionPolicyConfig{
				RequestsPerWindow: getIntEnv("ADMISSION_EDGE_LIMIT", 300),
				Window:            getDurationEnv("ADMISSION_EDGE_WINDOW", time.Minute),
				KeyPrefix:         getEnv("ADMISSION_EDGE_KEY_PREFIX", "rl:edge"),
				SkipOnError:       getBoolEnv("ADMISSION_EDGE_SKIP_ON_ERROR", true),
			},
			API: AdmissionPolicyConfig{
				RequestsPerWindow: getIntEnv("ADMISSION_API_LIMIT", 120),
				Window:            getDurationEnv("ADMISSION_API_WINDOW", time.Minute),
				KeyPrefix:         getEnv("ADMISSION_API_KEY_PREFIX", "rl:api"),
				SkipOnError:       getBoolEnv("ADMISSION_API_SKIP_ON_ERROR", true),
			},
			Auth: AdmissionPolicyConfig{
				RequestsPerWindow: getIntEnv("ADMISSION_AUTH_LIMIT", 10),
				Window:            getDurationEnv("ADMISSION_AUTH_WINDOW", time.Minute),
				KeyPrefix:         getEnv("ADMISSION_AUTH_KEY_PREFIX", "rl:auth"),
				SkipOnError:       getBoolEnv("ADMISSION_AUTH_SKIP_ON_ERROR", false),
			},
		},
		Probe: ProbeConfig{
			AllowedClients:    getListEnv("PROBE_ALLOWED_CLIENTS"),
			BlockedPaths:      getListEnv("PROBE_BLOCKED_PATHS"),
			BlockedExtensions: getListEnv("PROBE_BLOCKED_EXTENSIONS"),
			BlockedUserAgents: getListEnv("PROBE_BLOCKED_USER_AGENTS"),
			SuspiciousParams:  getListEnv("PROBE_SUSPICIOUS_PARAMS"),
		},
		Cache: CacheConfig{
			KeyPrefix:     getEnv("CACHE_KEY_PREFIX", "cache"),
			SuggestionTTL: getDurationEnv("CACHE_SUGGESTION_TTL", 10*time.Minute),
			InsightTTL:    getDurationEnv("CACHE_INSIGHT_TTL", time.Hour),
		},
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
