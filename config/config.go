package config

import (
	"log"
	"os"
	"slices"
	"strconv"
	"time"

	"gomarketplace-cart/internal/domain"
	"gomarketplace-cart/pkg/kvstore"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	AllowedOrigin string
	// Store
	StoreDriver     string
	StoreSQLitePath string
	RedisAddr       string
	// DB Config (postgres driver only)
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// S3-compatible bucket (s3 driver only)
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3Prefix          string
	S3AccessKeyID     string
	S3AccessKeySecret string
	// Cart
	CartStoreKey       string
	CartPersistTimeout time.Duration
	// Rate limiting for the local API
	RateLimitRPS   float64
	RateLimitBurst int
	ShutdownGrace  time.Duration
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env is optional, system env vars still apply
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		StoreDriver:     getEnv("STORE_DRIVER", kvstore.DriverSQLite),
		StoreSQLitePath: getEnv("STORE_SQLITE_PATH", "cart.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 4),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 1),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", "cart"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3AccessKeySecret: getEnv("S3_ACCESS_KEY_SECRET", ""),

		CartStoreKey:       getEnv("CART_STORE_KEY", domain.DefaultCartKey),
		CartPersistTimeout: getDurationEnv("CART_PERSIST_TIMEOUT", 5*time.Second),

		// 20 req/s, burst 40
		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),
		ShutdownGrace:  getDurationEnv("SHUTDOWN_GRACE", 5*time.Second),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if !slices.Contains(kvstore.Drivers, c.StoreDriver) {
		log.Fatalf("CRITICAL: unknown STORE_DRIVER %q (want one of %v)", c.StoreDriver, kvstore.Drivers)
	}
	if c.StoreDriver == kvstore.DriverRedis && c.RedisAddr == "" {
		log.Fatal("CRITICAL: REDIS_ADDR is required for the redis store driver")
	}
	if c.StoreDriver == kvstore.DriverPostgres && c.DBUrl == "" {
		log.Fatal("CRITICAL: DB_DSN is required for the postgres store driver")
	}
	if c.StoreDriver == kvstore.DriverS3 && c.S3Bucket == "" {
		log.Fatal("CRITICAL: S3_BUCKET is required for the s3 store driver")
	}
	if c.CartStoreKey == "" {
		log.Fatal("CRITICAL: CART_STORE_KEY must not be empty")
	}
	if c.StoreDriver == kvstore.DriverMemory {
		log.Println("WARNING: memory store driver keeps the cart only until the process exits.")
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
