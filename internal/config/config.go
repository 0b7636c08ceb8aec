package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type VerifierBackend string

const (
	VerifierOpenRouter VerifierBackend = "openrouter"
	VerifierGemini     VerifierBackend = "gemini"
	VerifierNone       VerifierBackend = "none"
)

type RuntimeConfig struct {
	StateDBPath  string
	StateFile    string
	SupabaseDSN  string
	CatalogLimit int

	Verifier         VerifierBackend
	OpenRouterAPIKey string
	OpenRouterModel  string
	GeminiAPIKey     string
	GeminiModel      string

	RevenueCatAPIKey    string
	RevenueCatAppUserID string
	EntitlementID       string
	EntitlementPoll     time.Duration

	FreeMovesPerDay  int
	SoftPaywallDelay time.Duration
	SchedulerBuffer  int

	LogLevel string
	LogFile  string
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		StateDBPath:      ".leap_state.db",
		CatalogLimit:     50,
		Verifier:         VerifierOpenRouter,
		OpenRouterModel:  "meta-llama/llama-3.1-8b-instruct:free",
		GeminiModel:      "gemini-2.0-flash",
		EntitlementID:    "Delusional Leap Pro",
		EntitlementPoll:  5 * time.Minute,
		FreeMovesPerDay:  3,
		SoftPaywallDelay: 1500 * time.Millisecond,
		SchedulerBuffer:  64,
		LogLevel:         "info",
		LogFile:          ".leap.log",
	}
}

// LoadDotEnv reads path (default .env) into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("LEAP_STATE_DB"); ok {
		cfg.StateDBPath = v
	}
	if v, ok := getEnvString("LEAP_STATE_FILE"); ok {
		cfg.StateFile = v
	}
	if v, ok := getEnvString("LEAP_SUPABASE_DSN"); ok {
		cfg.SupabaseDSN = v
	}
	if v, ok := getEnvInt("LEAP_CATALOG_LIMIT"); ok && v > 0 {
		cfg.CatalogLimit = v
	}
	if v, ok := getEnvString("LEAP_VERIFIER"); ok {
		switch b := VerifierBackend(strings.ToLower(v)); b {
		case VerifierOpenRouter, VerifierGemini, VerifierNone:
			cfg.Verifier = b
		}
	}
	if v, ok := getEnvString("LEAP_OPENROUTER_API_KEY"); ok {
		cfg.OpenRouterAPIKey = v
	}
	if v, ok := getEnvString("LEAP_OPENROUTER_MODEL"); ok {
		cfg.OpenRouterModel = v
	}
	if v, ok := getEnvString("LEAP_GEMINI_API_KEY"); ok {
		cfg.GeminiAPIKey = v
	}
	if v, ok := getEnvString("LEAP_GEMINI_MODEL"); ok {
		cfg.GeminiModel = v
	}
	if v, ok := getEnvString("LEAP_REVENUECAT_API_KEY"); ok {
		cfg.RevenueCatAPIKey = v
	}
	if v, ok := getEnvString("LEAP_REVENUECAT_APP_USER_ID"); ok {
		cfg.RevenueCatAppUserID = v
	}
	if v, ok := getEnvString("LEAP_ENTITLEMENT_ID"); ok {
		cfg.EntitlementID = v
	}
	if v, ok := getEnvInt("LEAP_ENTITLEMENT_POLL_SECONDS"); ok && v > 0 {
		cfg.EntitlementPoll = time.Duration(v) * time.Second
	}
	if v, ok := getEnvInt("LEAP_FREE_MOVES_PER_DAY"); ok && v > 0 {
		cfg.FreeMovesPerDay = v
	}
	if v, ok := getEnvInt("LEAP_SOFT_PAYWALL_DELAY_MS"); ok && v >= 0 {
		cfg.SoftPaywallDelay = time.Duration(v) * time.Millisecond
	}
	if v, ok := getEnvInt("LEAP_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString("LEAP_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvString("LEAP_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
