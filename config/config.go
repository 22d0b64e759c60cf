package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Port    string
	GinMode string

	DBDriver    string
	DatabaseURL string

	// JWTSecret signs identity tokens
	JWTSecret []byte
	TokenTTL  time.Duration

	S3Bucket       string
	S3Prefix       string
	AWSEndpoint    string
	PublicAssetURL string
	UploadDir      string
	MaxUploadBytes int64

	SNSTopicARN string

	AllowedOrigins     []string
	RateLimitPerMinute int
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// Load reads configuration from the environment, after an optional .env file
func Load() *Config {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}

	var origins []string
	for _, o := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(strings.TrimSuffix(o, "/")); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		Env:                getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GinMode:            os.Getenv("GIN_MODE"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:        getEnv("DATABASE_URL", "food_ordering.db"),
		JWTSecret:          []byte(getEnv("JWT_SECRET", "food_ordering_dev_secret")),
		TokenTTL:           ttl,
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Prefix:           os.Getenv("S3_PREFIX"),
		AWSEndpoint:        os.Getenv("AWS_ENDPOINT"),
		PublicAssetURL:     getEnv("PUBLIC_ASSET_URL", "/uploads"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", 5<<20)),
		SNSTopicARN:        os.Getenv("SNS_TOPIC_ARN"),
		AllowedOrigins:     origins,
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
