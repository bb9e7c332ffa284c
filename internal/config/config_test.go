package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "rest", cfg.RasaChannel)
	assert.Equal(t, 420, cfg.MaxMessageChars)
	assert.Equal(t, 3, cfg.BotRetryCount)
	assert.Equal(t, 1*time.Second, cfg.BotRetryBaseDelay)
	assert.Equal(t, 24, cfg.MaxButtonTitleLength)
	assert.Equal(t, 10, cfg.MaxButtons)
	assert.False(t, cfg.EnableCSAT)
	assert.False(t, cfg.TypingStatusEnabled)
	assert.False(t, cfg.AllowBotMention)
	assert.Equal(t, "Please rate the conversation", cfg.CSATMessage)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RASA_URL", "http://rasa:5005")
	t.Setenv("RASA_CHANNEL", "chatwoot")
	t.Setenv("CHATWOOT_URL", "http://chatwoot:3000")
	t.Setenv("CHATWOOT_BOT_TOKEN", "token123")
	t.Setenv("BOT_RESPONSE_RETRY_COUNT", "5")
	t.Setenv("MAX_MESSAGE_CHARACTERS", "100")
	t.Setenv("CHATWOOT_ENABLE_CSAT", "1")
	t.Setenv("ALLOW_BOT_MENTION", "True")
	t.Setenv("BOT_NAME", "Aria")
	t.Setenv("BOT_RESPONSE_BASE_DELAY", "250ms")

	cfg := Load()

	assert.Equal(t, "http://rasa:5005", cfg.RasaURL)
	assert.Equal(t, "chatwoot", cfg.RasaChannel)
	assert.Equal(t, "http://chatwoot:3000", cfg.ChatwootURL)
	assert.Equal(t, "token123", cfg.ChatwootBotToken)
	assert.Equal(t, 5, cfg.BotRetryCount)
	assert.Equal(t, 100, cfg.MaxMessageChars)
	assert.True(t, cfg.EnableCSAT)
	assert.True(t, cfg.AllowBotMention)
	assert.Equal(t, "Aria", cfg.BotName)
	assert.Equal(t, 250*time.Millisecond, cfg.BotRetryBaseDelay)
}

func TestBoolLegacyFlags(t *testing.T) {
	t.Setenv("CHATWOOT_TYPING_STATUS_ENABLED", "on")
	cfg := Load()
	assert.True(t, cfg.TypingStatusEnabled)

	t.Setenv("CHATWOOT_TYPING_STATUS_ENABLED", "notabool")
	cfg = Load()
	assert.False(t, cfg.TypingStatusEnabled)
}

func TestDurationBareSeconds(t *testing.T) {
	t.Setenv("BOT_RESPONSE_BASE_DELAY", "2")
	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.BotRetryBaseDelay)
}
