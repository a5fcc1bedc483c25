package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	meetingdto "github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-pipeline/internal/usecase/meeting"
)

// Review handles edits to transcripts and action items
type Review struct {
	svc    meetingUsecase.Service
	logger *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc meetingUsecase.Service, logger *zap.Logger) *Review {
	return &Review{svc: svc, logger: logger}
}

// UpdateTranscript handles PATCH /v1/transcripts/:id
func (h *Review) UpdateTranscript(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req meetingdto.UpdateTranscriptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	t, err := h.svc.UpdateTranscriptText(c.Request().Context(), id, req.TextLong)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, t)
}

// UpdateAction handles PATCH /v1/actions/:id
func (h *Review) UpdateAction(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req meetingdto.UpdateActionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	item, err := h.svc.UpdateActionStatus(c.Request().Context(), id, entities.ActionStatus(req.Status))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, item)
}

// ListActions handles GET /v1/actions?workspace_id=
func (h *Review) ListActions(c echo.Context) error {
	var q meetingdto.WorkspaceQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}

	items, err := h.svc.ListActions(c.Request().Context(), uuid.MustParse(q.WorkspaceID))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, items)
}
