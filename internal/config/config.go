package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                  string
	ServerAddr           string
	FrontendOrigins      []string
	Timezone             *time.Location
	RateLimitSubmit      int
	RateLimitSessions    int
	RateLimitWindowSec   int
	RedisURL             string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	CacheTTLSeconds      int
	MongoURI             string
	MongoDB              string
	AdminAPIKeyHash      string
	JWTSecret            string
	AccessTTLMinutes     int
	DeliveryProvider     string
	DeliveryTimeoutSec   int
	EmailJSServiceID     string
	EmailJSTemplateID    string
	EmailJSPublicKey     string
	EmailJSPrivateKey    string
	BrevoAPIKey          string
	BrevoSenderEmail     string
	BrevoSenderName      string
	BrevoSandbox         bool
	IntakeRecipientEmail string
	LogoPrimary          string
	LogoFallback         string
	MaxUploadMB          int
	SessionTTLMinutes    int
	MaxSessions          int
	MaxAttachments       int
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads a dotenv file (missing is fine) and then the environment.
// Variables already set in the environment win over the file.
func LoadFrom(dotEnvPath string) (*Config, error) {
	loadDotEnv(dotEnvPath)
	loc, err := time.LoadLocation(getEnv("TZ", "UTC"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" && mongoURI != "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "intake"
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigins:      getEnvList("FRONTEND_ORIGIN", "http://localhost:5173"),
		Timezone:             loc,
		RateLimitSubmit:      getEnvInt("RATE_LIMIT_SUBMIT", 5),
		RateLimitSessions:    getEnvInt("RATE_LIMIT_SESSIONS", 30),
		RateLimitWindowSec:   getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:      getEnvInt("CACHE_TTL_SECONDS", 300),
		MongoURI:             mongoURI,
		MongoDB:              mongoDB,
		AdminAPIKeyHash:      getEnv("ADMIN_API_KEY_HASH", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:     getEnvInt("ACCESS_TTL_MINUTES", 60),
		DeliveryProvider:     getEnv("DELIVERY_PROVIDER", "log"),
		DeliveryTimeoutSec:   getEnvInt("DELIVERY_TIMEOUT_SEC", defaultDeliveryTimeoutSec),
		EmailJSServiceID:     getEnv("EMAILJS_SERVICE_ID", ""),
		EmailJSTemplateID:    getEnv("EMAILJS_TEMPLATE_ID", ""),
		EmailJSPublicKey:     getEnv("EMAILJS_PUBLIC_KEY", ""),
		EmailJSPrivateKey:    getEnv("EMAILJS_PRIVATE_KEY", ""),
		BrevoAPIKey:          getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:     getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:      getEnv("BREVO_SENDER_NAME", ""),
		BrevoSandbox:         getEnvBool("BREVO_SANDBOX", false),
		IntakeRecipientEmail: getEnv("INTAKE_RECIPIENT_EMAIL", ""),
		LogoPrimary:          getEnv("LOGO_PRIMARY", "public/logo.png"),
		LogoFallback:         getEnv("LOGO_FALLBACK", "public/logo-fallback.png"),
		MaxUploadMB:          getEnvInt("MAX_UPLOAD_MB", defaultMaxUploadMB),
		SessionTTLMinutes:    getEnvInt("SESSION_TTL_MINUTES", defaultSessionTTLMinutes),
		MaxSessions:          getEnvInt("MAX_SESSIONS", 1000),
		MaxAttachments:       getEnvInt("MAX_ATTACHMENTS", 20),
	}

	return cfg, nil
}

const (
	defaultDeliveryTimeoutSec = 8
	defaultSessionTTLMinutes  = 60
	defaultMaxUploadMB        = 10
)

// Durations and sizes below fall back to their defaults when configured
// as zero or negative.

func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(positiveOr(c.DeliveryTimeoutSec, defaultDeliveryTimeoutSec)) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(positiveOr(c.SessionTTLMinutes, defaultSessionTTLMinutes)) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(positiveOr(c.MaxUploadMB, defaultMaxUploadMB)) << 20
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}

func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
