package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	// DevRoom upstream API.
	AuthEndpoint     string
	DataEndpoint     string
	BusinessEndpoint string
	ApplicationID    string
	APIKey           string
	GatewayTimeout   time.Duration

	// Bearer token cache.
	TokenTTL  time.Duration
	RedisAddr string

	// Checkout page sessions.
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"
	if !cookieSecure {
		cookieSecure = getenvBool("CHECKOUT_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "checkout"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,

		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		AuthEndpoint:     getenv("DEVROOM_TOKEN_ENDPOINT", "https://api.devroom.example.com/get-token"),
		DataEndpoint:     getenv("DEVROOM_DATA_ENDPOINT", "https://api.devroom.example.com/api/data"),
		BusinessEndpoint: getenv("DEVROOM_BUSINESS_ENDPOINT", "https://api.devroom.example.com/api/data/business"),
		ApplicationID:    getenv("DEVROOM_APP_ID", "test"),
		APIKey:           strings.TrimSpace(getenv("DEVROOM_API_KEY", "")),
		GatewayTimeout:   getenvDuration("DEVROOM_TIMEOUT", 12*time.Second),

		TokenTTL:  getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		RedisAddr: strings.TrimSpace(getenv("REDIS_ADDR", "")),

		SessionTTL:        getenvDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		SessionCookieName: getenv("CHECKOUT_SESSION_COOKIE", "_checkout"),
		CookieSecure:      cookieSecure,
	}
}

// Module provides configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewTaxRateHolder),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	return def
}
