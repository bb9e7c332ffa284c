package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Rasa bot backend
	RasaURL            string
	RasaChannel        string
	RasaJWTTokenSecret string
	MaxMessageChars    int
	BotRetryCount      int
	BotRetryBaseDelay  time.Duration
	BotRequestTimeout  time.Duration

	// Chatwoot platform API
	ChatwootURL      string
	ChatwootBotToken string

	// CSAT survey
	EnableCSAT  bool
	CSATMessage string

	// Typing indicator around bot calls
	TypingStatusEnabled bool

	// Interactive message limits (WhatsApp interactive-message constraints)
	MaxButtonTitleLength int
	MaxButtons           int

	// Agent-initiated bot mentions
	AllowBotMention bool
	BotName         string

	// Attachment text extraction service (OCR / PDF)
	ExtractorURL     string
	ExtractorTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RasaURL:            getEnv("RASA_URL", ""),
		RasaChannel:        getEnv("RASA_CHANNEL", "rest"),
		RasaJWTTokenSecret: getEnv("RASA_JWT_TOKEN_SECRET", ""),
		MaxMessageChars:    getEnvAsInt("MAX_MESSAGE_CHARACTERS", 420),
		BotRetryCount:      getEnvAsInt("BOT_RESPONSE_RETRY_COUNT", 3),
		BotRetryBaseDelay:  getEnvAsDuration("BOT_RESPONSE_BASE_DELAY", 1*time.Second),
		BotRequestTimeout:  getEnvAsDuration("BOT_REQUEST_TIMEOUT", 30*time.Second),

		ChatwootURL:      getEnv("CHATWOOT_URL", ""),
		ChatwootBotToken: getEnv("CHATWOOT_BOT_TOKEN", ""),

		EnableCSAT:  getEnvAsBool("CHATWOOT_ENABLE_CSAT", false),
		CSATMessage: getEnv("CHATWOOT_CSAT_MESSAGE", "Please rate the conversation"),

		TypingStatusEnabled: getEnvAsBool("CHATWOOT_TYPING_STATUS_ENABLED", false),

		MaxButtonTitleLength: getEnvAsInt("MAX_BUTTON_TITLE_LENGTH", 24),
		MaxButtons:           getEnvAsInt("MAX_NO_OF_BUTTONS", 10),

		AllowBotMention: getEnvAsBool("ALLOW_BOT_MENTION", false),
		BotName:         getEnv("BOT_NAME", ""),

		ExtractorURL:     getEnv("EXTRACTOR_URL", ""),
		ExtractorTimeout: getEnvAsDuration("EXTRACTOR_TIMEOUT", 60*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	// the legacy deployment used 0/1 and True/False flags
	switch strings.ToLower(valueStr) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	// bare integers are treated as seconds, matching the old env surface
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
