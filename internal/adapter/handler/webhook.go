package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/errors"
	meetingdto "github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/meeting"
	meetingUsecase "github.com/johnquangdev/meeting-pipeline/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

// WebhookHandler handles transcription provider callbacks
type WebhookHandler struct {
	svc    meetingUsecase.Service
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(svc meetingUsecase.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, logger: logger}
}

// HandleAssemblyAI handles POST /v1/webhooks/assemblyai.
// The shared secret travels in the x-webhook-secret header.
func (h *WebhookHandler) HandleAssemblyAI(c echo.Context) error {
	var req meetingdto.AssemblyAIWebhookRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	secret := c.Request().Header.Get(ai.WebhookSecretHeader)
	err := h.svc.HandleTranscriptionWebhook(c.Request().Context(), secret, meetingUsecase.WebhookEvent{
		TranscriptID: req.TranscriptID,
		Status:       req.Status,
		Error:        req.Error,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.WebhookResponse{Status: "ok"})
}
