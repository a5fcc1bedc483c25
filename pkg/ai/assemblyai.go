package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
	"github.com/johnquangdev/meeting-pipeline/pkg/config"
)

// WebhookSecretHeader carries the shared secret on AssemblyAI callbacks
const WebhookSecretHeader = "x-webhook-secret"

// SubmitRequest describes an audio file to transcribe
type SubmitRequest struct {
	AudioURL           string
	WebhookURL         string
	WebhookHeaderName  string
	WebhookHeaderValue string
}

// TranscriptResult is the finished transcript as reported by the provider
type TranscriptResult struct {
	ID         string
	Text       string
	Words      []entities.WordTimestamp
	Confidence *float64
}

// AssemblyAIClient submits recordings to AssemblyAI and fetches results
type AssemblyAIClient struct {
	client *aai.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config
func NewAssemblyAIClient(cfg *config.AssemblyConfig) *AssemblyAIClient {
	opts := []aai.ClientOption{
		aai.WithAPIKey(cfg.APIKey),
		aai.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}
	return &AssemblyAIClient{client: aai.NewClientWithOptions(opts...)}
}

// Submit queues a transcription job and returns the provider transcript ID.
// Speaker labels, punctuation, formatting and language detection are enabled.
func (c *AssemblyAIClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	params := &aai.TranscriptOptionalParams{
		SpeakerLabels:     aai.Bool(true),
		Punctuate:         aai.Bool(true),
		FormatText:        aai.Bool(true),
		LanguageDetection: aai.Bool(true),
	}
	if req.WebhookURL != "" {
		params.WebhookURL = aai.String(req.WebhookURL)
	}
	if req.WebhookHeaderName != "" {
		params.WebhookAuthHeaderName = aai.String(req.WebhookHeaderName)
		params.WebhookAuthHeaderValue = aai.String(req.WebhookHeaderValue)
	}

	transcript, err := c.client.Transcripts.SubmitFromURL(ctx, req.AudioURL, params)
	if err != nil {
		return "", fmt.Errorf("%w: submit: %w", ucerr.ErrTranscriptionService, err)
	}

	id := deref(transcript.ID)
	if id == "" {
		return "", fmt.Errorf("%w: submit returned no transcript id", ucerr.ErrTranscriptionService)
	}
	return id, nil
}

// FetchResult retrieves the text, words and confidence of a transcript
func (c *AssemblyAIClient) FetchResult(ctx context.Context, transcriptID string) (*TranscriptResult, error) {
	transcript, err := c.get(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	words := make([]entities.WordTimestamp, 0, len(transcript.Words))
	for _, w := range transcript.Words {
		words = append(words, entities.WordTimestamp{
			Text:       deref(w.Text),
			Start:      millisToSeconds(w.Start),
			End:        millisToSeconds(w.End),
			Confidence: derefFloat(w.Confidence),
			Speaker:    deref(w.Speaker),
		})
	}

	return &TranscriptResult{
		ID:         deref(transcript.ID),
		Text:       deref(transcript.Text),
		Words:      words,
		Confidence: transcript.Confidence,
	}, nil
}

// FetchUtterances retrieves speaker-labelled utterances in order.
// Times are converted from milliseconds to seconds.
func (c *AssemblyAIClient) FetchUtterances(ctx context.Context, transcriptID string) ([]entities.Utterance, error) {
	transcript, err := c.get(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	utterances := make([]entities.Utterance, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		utterances = append(utterances, entities.Utterance{
			Speaker:    deref(u.Speaker),
			Start:      millisToSeconds(u.Start),
			End:        millisToSeconds(u.End),
			Text:       deref(u.Text),
			Confidence: derefFloat(u.Confidence),
		})
	}
	return utterances, nil
}

func (c *AssemblyAIClient) get(ctx context.Context, transcriptID string) (aai.Transcript, error) {
	transcript, err := c.client.Transcripts.Get(ctx, transcriptID)
	if err != nil {
		return aai.Transcript{}, fmt.Errorf("%w: get %s: %w", ucerr.ErrTranscriptionService, transcriptID, err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return aai.Transcript{}, fmt.Errorf("%w: transcript %s failed: %s", ucerr.ErrTranscriptionService, transcriptID, deref(transcript.Error))
	}
	return transcript, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func millisToSeconds(ms *int64) float64 {
	if ms == nil {
		return 0
	}
	return float64(*ms) / 1000
}
