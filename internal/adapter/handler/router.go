package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Router holds all handlers
type Router struct {
	meetingHandler *Meeting
	reviewHandler  *Review
	webhookHandler *WebhookHandler
	auth           echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers.
// auth guards every /v1 route except provider webhooks.
func NewRouter(meetingHandler *Meeting, reviewHandler *Review, webhookHandler *WebhookHandler, auth echo.MiddlewareFunc) *Router {
	return &Router{
		meetingHandler: meetingHandler,
		reviewHandler:  reviewHandler,
		webhookHandler: webhookHandler,
		auth:           auth,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")

	// Webhooks authenticate with a shared secret, not a bearer token
	v1.POST("/webhooks/assemblyai", rt.webhookHandler.HandleAssemblyAI)

	protected := v1.Group("")
	if rt.auth != nil {
		protected.Use(rt.auth)
	}
	rt.setupMeetingRoutes(protected)
	rt.setupReviewRoutes(protected)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	meetings.POST("", rt.meetingHandler.CreateMeeting)
	meetings.GET("", rt.meetingHandler.ListMeetings)
	meetings.GET("/:id", rt.meetingHandler.GetMeeting)
	meetings.POST("/:id/upload-url", rt.meetingHandler.CreateUploadURL)
	meetings.POST("/:id/mark-uploaded", rt.meetingHandler.MarkUploaded)
	meetings.POST("/:id/process", rt.meetingHandler.Process)
	meetings.POST("/:id/retry", rt.meetingHandler.Retry)
	meetings.POST("/:id/exports", rt.meetingHandler.RequestExport)
	meetings.GET("/:id/exports", rt.meetingHandler.ListExports)
}

func (rt *Router) setupReviewRoutes(g *echo.Group) {
	g.PATCH("/transcripts/:id", rt.reviewHandler.UpdateTranscript)
	g.PATCH("/actions/:id", rt.reviewHandler.UpdateAction)
	g.GET("/actions", rt.reviewHandler.ListActions)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
