package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret is the fallback signing secret for local runs.
const DevJWTSecret = "dev-secret-change-me"

type Config struct {
	Env     string
	Version string
	Port    int

	// StoreDriver selects the record store: "postgres" or "memory".
	StoreDriver string
	DBURL       string
	DBMaxConns  int
	DBMinConns  int

	JWTSecret   string
	JWTTTLHours int

	CORSOrigins []string

	// Admin provisioning happens only when both email and password are set.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitAuthPerMin int
	OrderTransitions    string
	MaxBodyBytes        int64

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

// Load reads configuration from the environment, after merging an optional
// .env file in the working directory.
func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:                 env,
		Version:             getEnv("APP_VERSION", "dev"),
		Port:                getEnvInt("PORT", 8080),
		StoreDriver:         getEnv("STORE_DRIVER", "postgres"),
		DBURL:               getEnv("DATABASE_URL", buildDBURL()),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:          getEnvInt("DB_MIN_CONNS", 0),
		JWTSecret:           getEnv("JWT_SECRET", DevJWTSecret),
		JWTTTLHours:         getEnvInt("JWT_TTL_HOURS", 7*24),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AdminEmail:          getEnv("ADMIN_EMAIL", ""),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		AdminName:           getEnv("ADMIN_NAME", "Admin User"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		RateLimitAuthPerMin: getEnvInt("RATE_LIMIT_AUTH_PER_MIN", 20),
		OrderTransitions:    getEnv("ORDER_TRANSITIONS", "permissive"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		OTelEnabled:         getEnv("OTEL_ENABLED", "false") == "true",
		OTelEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio:     getEnvFloat("OTEL_SAMPLE_RATIO", 1),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "secondserve")
	pass := getEnv("DB_PASSWORD", "secondserve")
	name := getEnv("DB_NAME", "secondserve")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a store call made on behalf of parent. A nil parent
// means background work.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env value, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
