package config

import (
	"os"
	"strconv"
	"time"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

const AppName = "verify-service"

// Config holds all application configuration. It is constructed once in
// main and passed explicitly into services and gateways; nothing reads the
// environment after LoadConfig returns.
type Config struct {
	AppName      string
	AppPort      string
	AppUrl       string
	StoreBackend string // "postgres" or "memory"
	DBUrl        string

	CodeLength      int
	CodeTTL         time.Duration
	MaxAttempts     int
	ReissueInterval time.Duration
	DeliveryTimeout time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	SendGridAPIKey   string
	SendGridFrom     string

	DeliveryDryRun          bool
	ValidatePhoneWithTwilio bool

	IssueLimitPerIP          int
	IssueLimitPerDestination int
	GlobalIssueLimit         int
	RateLimitWindow          time.Duration
}

// Defaults. Overridable through the environment, see LoadConfig.
const (
	DefaultCodeLength      = 6
	DefaultCodeTTL         = 10 * time.Minute
	DefaultMaxAttempts     = 5
	DefaultReissueInterval = 60 * time.Second
	DefaultDeliveryTimeout = 10 * time.Second

	DefaultIssueLimitPerIP          = 20
	DefaultIssueLimitPerDestination = 5
	DefaultGlobalIssueLimit         = 1000
	DefaultRateLimitWindow          = 1 * time.Hour
)

// LoadConfig reads the environment and returns a *Config. Missing required
// variables are fatal; tunables fall back to the documented defaults.
func LoadConfig() *Config {
	cfg := &Config{
		AppName:      AppName,
		AppPort:      envOr("APP_PORT", "8080"),
		AppUrl:       envOr("APP_URL", "http://localhost:8080"),
		StoreBackend: envOr("STORE_BACKEND", "postgres"),

		CodeLength:      envIntOr("CODE_LENGTH", DefaultCodeLength),
		CodeTTL:         envSecondsOr("CODE_TTL_SECONDS", DefaultCodeTTL),
		MaxAttempts:     envIntOr("MAX_ATTEMPTS", DefaultMaxAttempts),
		ReissueInterval: envSecondsOr("REISSUE_INTERVAL_SECONDS", DefaultReissueInterval),
		DeliveryTimeout: envSecondsOr("DELIVERY_TIMEOUT_SECONDS", DefaultDeliveryTimeout),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:  os.Getenv("TWILIO_FROM_PHONE"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:     os.Getenv("SENDGRID_FROM_EMAIL"),

		DeliveryDryRun:          envBool("DELIVERY_DRY_RUN"),
		ValidatePhoneWithTwilio: envBool("VALIDATE_PHONE_WITH_TWILIO"),

		IssueLimitPerIP:          envIntOr("ISSUE_LIMIT_PER_IP", DefaultIssueLimitPerIP),
		IssueLimitPerDestination: envIntOr("ISSUE_LIMIT_PER_DESTINATION", DefaultIssueLimitPerDestination),
		GlobalIssueLimit:         envIntOr("GLOBAL_ISSUE_LIMIT", DefaultGlobalIssueLimit),
		RateLimitWindow:          envSecondsOr("RATE_LIMIT_WINDOW_SECONDS", DefaultRateLimitWindow),
	}

	switch cfg.StoreBackend {
	case "postgres":
		cfg.DBUrl = os.Getenv("DB_URL")
		if cfg.DBUrl == "" {
			utils.Logger.Fatal("DB_URL env var is missing (required with STORE_BACKEND=postgres)")
		}
	case "memory":
		// no DB needed
	default:
		utils.Logger.Fatalf("Unknown STORE_BACKEND %q (want postgres or memory)", cfg.StoreBackend)
	}

	if !cfg.DeliveryDryRun {
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromPhone == "" {
			utils.Logger.Fatal("TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_FROM_PHONE env vars are missing")
		}
		if cfg.SendGridAPIKey == "" || cfg.SendGridFrom == "" {
			utils.Logger.Fatal("SENDGRID_API_KEY / SENDGRID_FROM_EMAIL env vars are missing")
		}
	}

	if cfg.CodeLength < 4 || cfg.CodeLength > 10 {
		utils.Logger.Fatalf("CODE_LENGTH %d out of range [4,10]", cfg.CodeLength)
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.Logger.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func envSecondsOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		utils.Logger.Fatalf("%s must be a positive integer number of seconds, got %q", key, v)
	}
	return time.Duration(n) * time.Second
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "1" || v == "true" || v == "TRUE"
}
