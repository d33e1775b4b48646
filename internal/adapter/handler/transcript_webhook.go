package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/internal/adapter/dto"
	"github.com/johnquangdev/meeting-intel/internal/usecase/sync"
)

// TranscriptWebhook handles transcript-ready callbacks from the source
type TranscriptWebhook struct {
	syncService *sync.Service
	secret      string
	logger      *zap.Logger
}

// NewTranscriptWebhook creates a new webhook handler
func NewTranscriptWebhook(syncService *sync.Service, secret string, logger *zap.Logger) *TranscriptWebhook {
	return &TranscriptWebhook{
		syncService: syncService,
		secret:      secret,
		logger:      logger,
	}
}

// Handle verifies the signature and processes the referenced transcript
func (h *TranscriptWebhook) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
	}

	signature := c.Request().Header.Get("X-Hub-Signature")
	if !verifyHMAC(h.secret, body, signature) {
		h.logger.Warn("⚠️ Webhook signature verification failed")
		appErr := apperrors.ErrWebhookSignature()
		return c.JSON(appErr.HTTPCode, map[string]string{"error": appErr.Message})
	}

	var req dto.TranscriptWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.syncService.SyncOne(c.Request().Context(), req.TranscriptID); err != nil {
		h.logger.Error("❌ Webhook transcript processing failed",
			zap.String("transcript_id", req.TranscriptID),
			zap.Error(err),
		)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "processed"})
}

// verifyHMAC verifies a sha256 HMAC hex signature against payload and
// secret. With no secret configured, verification is disabled and every
// request is accepted.
func verifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" {
		return true
	}
	if signatureHex == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}
