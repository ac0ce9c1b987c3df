package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motmatch/mot-marketplace/internal/billing"
	"github.com/motmatch/mot-marketplace/internal/config"
	usecase "github.com/motmatch/mot-marketplace/internal/usecase/subscription"
)

// WebhookHandler receives payment processor callbacks. The processor retries
// on anything but 2xx, so transient failures return 500 and everything already
// handled (including redeliveries) returns 200.
type WebhookHandler struct {
	config *config.Config
	apply  *usecase.ApplyWebhook
}

func NewWebhookHandler(cfg *config.Config, apply *usecase.ApplyWebhook) *WebhookHandler {
	return &WebhookHandler{config: cfg, apply: apply}
}

type webhookPayload struct {
	ID   json.Number `json:"id"`
	Type string      `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *WebhookHandler) HandleMercadoPago(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}

	ok := billing.VerifySignature(
		h.config.MPWebhookSecret,
		c.GetHeader("x-signature"),
		c.GetHeader("x-request-id"),
		payload.Data.ID,
	)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
		return
	}

	err = h.apply.Execute(
		c.Request.Context(),
		payload.ID.String(),
		payload.Type,
		payload.Data.ID,
		string(body),
	)
	if err != nil {
		if errors.Is(err, usecase.ErrDuplicateEvent) {
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
			return
		}

		log.Printf("webhook %s (%s) failed: %v", payload.ID.String(), payload.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
