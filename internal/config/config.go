package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It signs both API tokens and
// OAuth state, so it must be replaced outside development.
const DefaultJWTSecret = "change-me-in-production"

// Config holds application configuration
type Config struct {
	ServerPort   string
	AppBaseURL   string
	Debug        bool
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	// Lexicon sources may be file paths or http(s) URLs
	GeneralLexicon     string
	AcademicLexicon    string
	AcademicRankOffset int

	Trainer TrainerDefaults

	JWTSecret          string
	SessionDuration    time.Duration
	GoogleClientID     string
	GoogleClientSecret string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
}

// TrainerDefaults are the trainer settings used until a learner saves their own
type TrainerDefaults struct {
	Difficulty           int
	AutoRemoveCount      int
	RoundLength          int
	ManualDifficulty     bool
	DoAssessment         bool
	AutoAdjust           bool
	Grading              string
	ResampleDebounce     time.Duration
	CalibrationBandBase  float64
	CalibrationBandRange float64
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg := &Config{
		ServerPort:         getEnv("PORT", "8080"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:              getEnvBool("DEBUG", false),
		DatabaseType:       getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:       getEnv("DB_PATH", "./vocabtrainer.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		GeneralLexicon:     getEnv("LEXICON_GENERAL", "./data/vocab_data.json"),
		AcademicLexicon:    getEnv("LEXICON_ACADEMIC", "./data/academic_vocab.json"),
		AcademicRankOffset: getEnvInt("ACADEMIC_RANK_OFFSET", 3000),
		Trainer: TrainerDefaults{
			Difficulty:           clampInt(getEnvInt("DEFAULT_DIFFICULTY", 50), 0, 100),
			AutoRemoveCount:      max(0, getEnvInt("AUTO_REMOVE_COUNT", 2)),
			RoundLength:          max(1, getEnvInt("ROUND_LENGTH", 100)),
			ManualDifficulty:     getEnvBool("MANUAL_DIFFICULTY", false),
			DoAssessment:         getEnvBool("DO_ASSESSMENT", false),
			AutoAdjust:           getEnvBool("AUTO_ADJUST", true),
			Grading:              strings.ToLower(getEnv("GRADING", "always")),
			ResampleDebounce:     getEnvDuration("RESAMPLE_DEBOUNCE", 500*time.Millisecond),
			CalibrationBandBase:  getEnvFloat("CALIBRATION_BAND_BASE", 0),
			CalibrationBandRange: getEnvFloat("CALIBRATION_BAND_RANGE", 100),
		},
		JWTSecret:          getEnv("JWT_SECRET", DefaultJWTSecret),
		SessionDuration:    getEnvDuration("SESSION_DURATION", 24*time.Hour),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:       getEnv("SES_FROM_EMAIL", ""),
		SESFromName:        getEnv("SES_FROM_NAME", "Vocab Trainer"),
	}

	if cfg.UsesDefaultSecret() {
		log.Printf("Warning: JWT_SECRET is not set, tokens and OAuth state are signed with the built-in default")
	}
	return cfg
}

// UsesDefaultSecret reports whether tokens are signed with DefaultJWTSecret
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		log.Printf("Warning: invalid number for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid boolean for %s=%q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
