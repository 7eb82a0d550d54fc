package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultJWTSecret is the signing key used when JWT_SECRET is unset. It is only
// accepted outside production.
const DefaultJWTSecret = "change-me-in-production"

var ErrInsecureSecret = errors.New("config: JWT_SECRET must be set to a non-default value in production")

// Config holds every setting the server and CLI read from the environment.
type Config struct {
	AppEnv  string
	Port    string
	BaseURL string
	WebDir  string

	DBDriver string
	DBDSN    string

	JWTSecret   string
	CORSOrigins []string
	AllowSignup bool

	CartStore     string // file | redis | memory
	CartDir       string
	RedisAddr     string
	RedisPassword string

	UploadDriver string // local | s3
	UploadDir    string
	S3Bucket     string
	S3Region     string
	S3Key        string
	S3Secret     string
	S3Endpoint   string
	S3URL        string

	GeminiAPIKey string

	Location          *time.Location
	BestSellerMetric  string // stock | units_sold
	LowStockThreshold int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using process environment")
	}

	cfg := &Config{
		AppEnv:    get("APP_ENV", "local"),
		Port:      get("APP_PORT", "8080"),
		WebDir:    get("WEB_DIR", "./web"),
		DBDSN:     get("DB_DSN", ""),
		JWTSecret: get("JWT_SECRET", DefaultJWTSecret),

		CartDir:       get("CART_DIR", "./storage/carts"),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),

		UploadDir:  get("UPLOAD_DIR", "./uploads"),
		S3Bucket:   get("S3_BUCKET", ""),
		S3Region:   get("S3_REGION", "ap-south-1"),
		S3Key:      get("S3_KEY", ""),
		S3Secret:   get("S3_SECRET", ""),
		S3Endpoint: get("S3_ENDPOINT", ""),
		S3URL:      get("S3_URL", ""),

		GeminiAPIKey: get("GEMINI_API_KEY", ""),
	}

	cfg.BaseURL = get("BASE_URL", "http://localhost:"+cfg.Port)
	cfg.DBDriver = oneOf("DB_DRIVER", "sqlite", "sqlite", "mysql", "postgres")
	cfg.CartStore = oneOf("CART_STORE", "file", "file", "redis", "memory")
	cfg.UploadDriver = oneOf("UPLOAD_DRIVER", "local", "local", "s3")
	cfg.BestSellerMetric = oneOf("BEST_SELLER_METRIC", "stock", "stock", "units_sold")
	cfg.AllowSignup = getBool("ALLOW_SIGNUP", true)
	cfg.LowStockThreshold = getInt("LOW_STOCK_THRESHOLD", 10)
	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", "http://localhost:5173"))

	if cfg.DBDSN == "" && cfg.DBDriver == "sqlite" {
		cfg.DBDSN = "ss-uniforms.db"
	}

	tz := get("TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).WithField("timezone", tz).Warn("Unknown TIMEZONE, falling back to UTC")
		loc = time.UTC
	}
	cfg.Location = loc

	return cfg
}

// Production reports whether the app runs with production defaults.
func (c *Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// CheckSecret fails in production when the signing key is empty or the
// built-in default. Elsewhere it only warns.
func (c *Config) CheckSecret() error {
	if c.JWTSecret != "" && c.JWTSecret != DefaultJWTSecret {
		return nil
	}
	if c.Production() {
		return ErrInsecureSecret
	}
	log.Warn("JWT_SECRET is not set, sessions are signed with the development key")
	return nil
}

// ConfigureLogging switches logrus to JSON output in production.
func (c *Config) ConfigureLogging() {
	if c.Production() {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.DebugLevel)
}

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func oneOf(key, fallback string, allowed ...string) string {
	v := strings.ToLower(get(key, fallback))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.WithFields(log.Fields{"key": key, "value": v}).Warn("Unsupported config value, using default")
	return fallback
}

func getInt(key string, fallback int) int {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.WithFields(log.Fields{"key": key, "value": raw}).Warn("Invalid integer config value, using default")
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithFields(log.Fields{"key": key, "value": raw}).Warn("Invalid boolean config value, using default")
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
