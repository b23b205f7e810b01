package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	telegramapp "github.com/compucar/backend/internal/application/telegram"
	tg "github.com/compucar/backend/internal/infrastructure/telegram"
)

// secretTokenHeader is set by Telegram on every webhook call when a
// secret token was registered with setWebhook
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookVerifier checks the webhook secret token
type WebhookVerifier interface {
	VerifyWebhookSecret(token string) bool
}

// TelegramWebhookHandler receives bot updates from Telegram
type TelegramWebhookHandler struct {
	BaseHandler
	verifier WebhookVerifier
	bot      *telegramapp.BotService
	logger   *zap.Logger
}

// NewTelegramWebhookHandler creates a new TelegramWebhookHandler
func NewTelegramWebhookHandler(verifier WebhookVerifier, bot *telegramapp.BotService, logger *zap.Logger) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		verifier: verifier,
		bot:      bot,
		logger:   logger,
	}
}

// Receive handles one webhook update. Processing errors are logged
// and answered with 200 so Telegram does not redeliver the update;
// redelivery would only hit the callback dedup store anyway.
func (h *TelegramWebhookHandler) Receive(c *gin.Context) {
	if !h.verifier.VerifyWebhookSecret(c.GetHeader(secretTokenHeader)) {
		h.logger.Warn("Telegram webhook with bad secret token",
			zap.String("remote_addr", c.ClientIP()))
		h.Unauthorized(c, "Invalid webhook secret")
		return
	}

	var update tg.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.BadRequest(c, "Malformed update payload")
		return
	}

	if err := h.bot.HandleUpdate(c.Request.Context(), update); err != nil {
		h.logger.Error("Failed to handle telegram update",
			zap.Error(err),
			zap.Int64("update_id", update.UpdateID))
	}

	c.Status(http.StatusOK)
}
