package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// MinSecretLength is the shortest JWT_SECRET accepted at startup.
const MinSecretLength = 32

// DefaultMongoDatabase is used when MONGO_DATABASE is unset.
const DefaultMongoDatabase = "spendtrack"

var (
	ErrSecretMissing = errors.New("JWT_SECRET must be set")
	ErrSecretTooWeak = fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
)

type Config struct {
	Port           string
	Env            string
	DatabaseDriver string
	DatabaseDSN    string
	MongoDatabase  string
	JWTSecret      []byte
	JWTExpiry      time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// Load reads configuration from the environment. A missing or short
// JWT_SECRET is an error: the server must not start without a signing key.
func Load() (Config, error) {
	expiry, err := getDuration("JWT_EXPIRY", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	driver := strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite"))
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDriver: driver,
		DatabaseDSN:    getEnv("DATABASE_DSN", DefaultDSN(driver)),
		MongoDatabase:  getEnv("MONGO_DATABASE", DefaultMongoDatabase),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		JWTExpiry:      expiry,
		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if len(cfg.JWTSecret) == 0 {
		return Config{}, ErrSecretMissing
	}
	if len(cfg.JWTSecret) < MinSecretLength {
		return Config{}, ErrSecretTooWeak
	}
	if cfg.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRY must be positive, got %s", cfg.JWTExpiry)
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "mysql", "mongo":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// DefaultDSN is the connection string used for driver when DATABASE_DSN is
// unset. Unknown drivers get the SQLite file.
func DefaultDSN(driver string) string {
	switch driver {
	case "mysql":
		return "root:password@tcp(127.0.0.1:3306)/spendtrack?parseTime=true"
	case "mongo":
		return "mongodb://127.0.0.1:27017"
	default:
		return "spendtrack.db"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
