package telegram

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the Telegram Bot API client
type Config struct {
	// BotToken authenticates the bot against the Bot API
	BotToken string
	// AdminChatID is the chat that receives admin notifications
	AdminChatID int64
	// BaseURL is the Bot API endpoint
	BaseURL string
	// WebhookSecret is compared against the secret token header on
	// incoming webhook updates
	WebhookSecret string
	// Timeout bounds every outbound HTTP call
	Timeout time.Duration
}

// TelegramAPIURL is the public Bot API endpoint
const TelegramAPIURL = "https://api.telegram.org"

var (
	ErrTelegramConfigMissingToken = errors.New("telegram: bot token is required")
	ErrTelegramConfigMissingChat  = errors.New("telegram: admin chat ID is required")
)

// NewConfig creates a Telegram configuration with production defaults
func NewConfig(botToken string, adminChatID int64) *Config {
	return &Config{
		BotToken:    botToken,
		AdminChatID: adminChatID,
		BaseURL:     TelegramAPIURL,
		Timeout:     10 * time.Second,
	}
}

// Validate checks that the configuration is complete
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return ErrTelegramConfigMissingToken
	}
	if c.AdminChatID == 0 {
		return ErrTelegramConfigMissingChat
	}
	if c.BaseURL == "" {
		c.BaseURL = TelegramAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
