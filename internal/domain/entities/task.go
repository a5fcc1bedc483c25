package entities

import "github.com/google/uuid"

// TaskName identifies a pipeline stage on the job queue
type TaskName string

const (
	TaskStartTranscription TaskName = "start_transcription"
	TaskFetchTranscript    TaskName = "fetch_transcript"
	TaskSummarizeMeeting   TaskName = "summarize_meeting"
	TaskExportMeeting      TaskName = "export_meeting"
)

// TaskPayload is the JSON body carried by every pipeline task
type TaskPayload struct {
	MeetingID              uuid.UUID    `json:"meeting_id"`
	AssemblyAITranscriptID string       `json:"assemblyai_transcript_id,omitempty"`
	ExportID               *uuid.UUID   `json:"export_id,omitempty"`
	Format                 ExportFormat `json:"format,omitempty"`
	RunToken               string       `json:"run_token,omitempty"`
}

// IsValid reports whether the queue has a stage for this name
func (n TaskName) IsValid() bool {
	switch n {
	case TaskStartTranscription, TaskFetchTranscript, TaskSummarizeMeeting, TaskExportMeeting:
		return true
	}
	return false
}
