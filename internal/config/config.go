package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	MinIO   MinIOConfig
	JWT     JWTConfig
	Server  ServerConfig
	Auth    AuthConfig
	Storage StorageConfig
	Seed    SeedConfig
}

type DBConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

type AuthConfig struct {
	CookieSecure        bool
	AllowedEmailDomains []string
	RateLimitPerMinute  int
}

type StorageConfig struct {
	Driver           string
	UploadDir        string
	PosterMaxBytes   int64
	CleanupQueueSize int
}

type SeedConfig struct {
	SuperAdminEmail    string
	SuperAdminName     string
	SuperAdminPassword string
	Categories         []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "silomba"),
			Password:     getEnv("DB_PASSWORD", "silomba_secret"),
			Name:         getEnv("DB_NAME", "silomba"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "silomba.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "silomba"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "silomba_secret"),
			Bucket:    getEnv("MINIO_BUCKET", "silomba"),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "5000"),
			CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Auth: AuthConfig{
			CookieSecure:        getEnvAsBool("COOKIE_SECURE", true),
			AllowedEmailDomains: getEnvAsList("ALLOWED_EMAIL_DOMAINS", []string{"unhas.ac.id"}),
			RateLimitPerMinute:  getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 30),
		},
		Storage: StorageConfig{
			Driver:           strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadDir:        getEnv("UPLOAD_DIR", "public/uploads"),
			PosterMaxBytes:   getEnvAsInt64("POSTER_MAX_BYTES", 5*1024*1024),
			CleanupQueueSize: getEnvAsInt("CLEANUP_QUEUE_SIZE", 100),
		},
		Seed: SeedConfig{
			SuperAdminEmail:    getEnv("SUPERADMIN_EMAIL", "superadmin@unhas.ac.id"),
			SuperAdminName:     getEnv("SUPERADMIN_NAME", "Kepala Departemen"),
			SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", "superadmin123"),
			Categories:         getEnvAsList("SEED_CATEGORIES", []string{"UI/UX", "Data Science", "Competitive Programming"}),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	items := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
