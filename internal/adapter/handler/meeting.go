package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	meetingdto "github.com/johnquangdev/meeting-pipeline/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	meetingUsecase "github.com/johnquangdev/meeting-pipeline/internal/usecase/meeting"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	svc    meetingUsecase.Service
	logger *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(svc meetingUsecase.Service, logger *zap.Logger) *Meeting {
	return &Meeting{svc: svc, logger: logger}
}

// CreateMeeting handles POST /v1/meetings
func (h *Meeting) CreateMeeting(c echo.Context) error {
	var req meetingdto.CreateMeetingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.svc.CreateMeeting(c.Request().Context(), userID, meetingUsecase.CreateMeetingInput{
		WorkspaceID:   uuid.MustParse(req.WorkspaceID),
		Title:         req.Title,
		Source:        entities.MeetingSource(req.Source),
		RecordingMime: req.RecordingMime,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, m)
}

// ListMeetings handles GET /v1/meetings?workspace_id=
func (h *Meeting) ListMeetings(c echo.Context) error {
	var q meetingdto.WorkspaceQuery
	if err := bindAndValidate(c, &q); err != nil {
		return HandleError(h.logger, c, err)
	}

	meetings, err := h.svc.ListMeetings(c.Request().Context(), uuid.MustParse(q.WorkspaceID))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetings)
}

// GetMeeting handles GET /v1/meetings/:id
func (h *Meeting) GetMeeting(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.svc.GetMeeting(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// CreateUploadURL handles POST /v1/meetings/:id/upload-url
func (h *Meeting) CreateUploadURL(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req meetingdto.UploadURLRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	target, err := h.svc.CreateUploadURL(c.Request().Context(), id, req.FileExt)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, target)
}

// MarkUploaded handles POST /v1/meetings/:id/mark-uploaded
func (h *Meeting) MarkUploaded(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req meetingdto.MarkUploadedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	m, err := h.svc.MarkUploaded(c.Request().Context(), id, req.ObjectPath, req.RecordingMime)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, m)
}

// Process handles POST /v1/meetings/:id/process
func (h *Meeting) Process(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.Process(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.ProcessResponse{Status: string(entities.MeetingStatusProcessing)})
}

// Retry handles POST /v1/meetings/:id/retry
func (h *Meeting) Retry(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.svc.Retry(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.RetryResponse{Success: true})
}

// RequestExport handles POST /v1/meetings/:id/exports
func (h *Meeting) RequestExport(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	var req meetingdto.CreateExportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	export, err := h.svc.RequestExport(c.Request().Context(), userID, id, entities.ExportFormat(req.Format))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(h.logger, c, export)
}

// ListExports handles GET /v1/meetings/:id/exports
func (h *Meeting) ListExports(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	exports, err := h.svc.ListExports(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, exports)
}
