package meeting

// ProcessResponse is returned when a pipeline run is started
type ProcessResponse struct {
	Status string `json:"status"`
}

// RetryResponse is returned when a failed meeting is requeued
type RetryResponse struct {
	Success bool `json:"success"`
}

// WebhookResponse acknowledges a provider callback
type WebhookResponse struct {
	Status string `json:"status"`
}
