package meeting

// CreateMeetingRequest represents the request to create a meeting
type CreateMeetingRequest struct {
	WorkspaceID   string  `json:"workspace_id" validate:"required,uuid"`
	Title         string  `json:"title" validate:"required,min=1,max=255"`
	Source        string  `json:"source" validate:"required,meeting_source"`
	RecordingMime *string `json:"recording_mime,omitempty" validate:"omitempty,max=100"`
}

// UploadURLRequest represents the request for a presigned recording upload
type UploadURLRequest struct {
	FileExt  string `json:"file_ext" validate:"required,max=10"`
	MimeType string `json:"mime_type" validate:"required,max=100"`
}

// MarkUploadedRequest confirms that the recording is in storage
type MarkUploadedRequest struct {
	ObjectPath    string  `json:"object_path" validate:"required,max=1024"`
	RecordingMime *string `json:"recording_mime,omitempty" validate:"omitempty,max=100"`
}

// CreateExportRequest represents the request to render an export
type CreateExportRequest struct {
	Format string `json:"format" validate:"required,export_format"`
}

// UpdateTranscriptRequest replaces the transcript text
type UpdateTranscriptRequest struct {
	TextLong string `json:"text_long" validate:"required,min=1"`
}

// UpdateActionRequest changes the status of an action item
type UpdateActionRequest struct {
	Status string `json:"status" validate:"required,action_status"`
}

// WorkspaceQuery scopes list endpoints to a workspace
type WorkspaceQuery struct {
	WorkspaceID string `query:"workspace_id" validate:"required,uuid"`
}

// AssemblyAIWebhookRequest is the callback body posted by AssemblyAI
type AssemblyAIWebhookRequest struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}
