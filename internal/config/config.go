package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Stripe   StripeConfig
	Health   HealthConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds the store selection and postgres connection settings
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// DSN returns the key/value form understood by lib/pq
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host + " port=" + strconv.Itoa(c.Port) + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

// MongoConfig holds document store settings
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	OpTimeout      time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// FirebaseConfig identifies the project whose ID tokens are accepted
type FirebaseConfig struct {
	ProjectID string
	JWKSURL   string
	// KeyCacheTTL bounds how long fetched signing keys are reused when the
	// key server sends no Cache-Control max-age.
	KeyCacheTTL time.Duration
}

// StripeConfig holds payment provider settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SiteDomain    string
	APIURL        string
	Timeout       time.Duration
}

// HealthConfig controls the store probe job
type HealthConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", getEnv("PORT", "8080")),
			Env:             getEnv("SERVER_ENV", "development"),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "blood_donate"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "bloodDonateDB"),
			ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			OpTimeout:      getEnvAsDuration("MONGODB_OP_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
			JWKSURL:     getEnv("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
			KeyCacheTTL: getEnvAsDuration("FIREBASE_KEY_CACHE_TTL", time.Hour),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
			SiteDomain:    strings.TrimRight(getEnv("SITE_DOMAIN", "http://localhost:5173"), "/"),
			APIURL:        getEnv("STRIPE_API_URL", ""),
			Timeout:       getEnvAsDuration("STRIPE_TIMEOUT", 10*time.Second),
		},
		Health: HealthConfig{
			Interval: getEnvAsDuration("HEALTH_PROBE_INTERVAL", 30*time.Second),
			Timeout:  getEnvAsDuration("HEALTH_PROBE_TIMEOUT", 3*time.Second),
		},
	}
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsSlice splits a comma separated list, dropping blanks.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
