package http

import (
	"context"
	"net/http"

	"postauto/internal/entity"
	"postauto/internal/usecase"
	"postauto/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConnectionTester verifies stored provider credentials with a live call.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// BotReiniter restarts the Telegram connection after its credentials change.
type BotReiniter interface {
	Reinit() error
}

type CredentialsHandler struct {
	credentials usecase.CredentialsUseCase
	testers     map[string]ConnectionTester
	bot         BotReiniter
	logger      *logger.Logger
}

func NewCredentialsHandler(credentials usecase.CredentialsUseCase, testers map[string]ConnectionTester, bot BotReiniter, logger *logger.Logger) *CredentialsHandler {
	return &CredentialsHandler{
		credentials: credentials,
		testers:     testers,
		bot:         bot,
		logger:      logger,
	}
}

// ListCredentials returns all stored credentials with secrets masked.
func (h *CredentialsHandler) ListCredentials(c *gin.Context) {
	creds, err := h.credentials.List()
	if err != nil {
		h.logger.Error("Failed to list credentials: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credentials": creds, "count": len(creds)})
}

type SetCredentialRequest struct {
	Key         string `json:"key" binding:"required"`
	Value       string `json:"value" binding:"required"`
	Encrypt     bool   `json:"encrypt"`
	Description string `json:"description"`
}

// SetCredential upserts a credential. Changing the Telegram bot token also
// reconnects the bot.
func (h *CredentialsHandler) SetCredential(c *gin.Context) {
	var req SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cred, err := h.credentials.Set(req.Key, req.Value, req.Encrypt, req.Description)
	if err != nil {
		h.logger.Error("Failed to save credential %s: %v", req.Key, err)
		respondError(c, err)
		return
	}

	if req.Key == entity.CredTelegramBotToken || req.Key == entity.CredTelegramChatID {
		if err := h.bot.Reinit(); err != nil {
			h.logger.Warn("Failed to reinitialize Telegram bot: %v", err)
		}
	}

	c.JSON(http.StatusOK, cred)
}

// TestConnection runs a live check against one provider: deepseek, gemini
// or wordpress.
func (h *CredentialsHandler) TestConnection(c *gin.Context) {
	service := c.Param("service")
	tester, ok := h.testers[service]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown service: " + service})
		return
	}

	if err := tester.TestConnection(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": service, "status": "ok"})
}

// ReinitTelegram forces a bot reconnect with the stored credentials.
func (h *CredentialsHandler) ReinitTelegram(c *gin.Context) {
	if err := h.bot.Reinit(); err != nil {
		h.logger.Error("Failed to reinitialize Telegram bot: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reconnected"})
}
