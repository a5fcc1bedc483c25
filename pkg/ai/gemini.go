package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/johnquangdev/meeting-pipeline/pkg/config"
	"github.com/johnquangdev/meeting-pipeline/pkg/jobcontext"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// Prompt is one model call: a system instruction and a user message.
// JSON asks the model for a JSON document.
type Prompt struct {
	System string
	User   string
	JSON   bool
}

// GeminiClient generates text with Google Gemini
type GeminiClient struct {
	client     *genai.Client
	model      string
	logger     *zap.Logger
	maxElapsed time.Duration
}

// NewGeminiClient creates a Gemini client using the provided config
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		logger:     logger,
		maxElapsed: 2 * time.Minute,
	}, nil
}

// Generate runs one prompt. Rate limits and 5xx responses are retried with
// exponential backoff; other errors are returned at once.
func (g *GeminiClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	genCfg := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}
	if prompt.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	var text string
	operation := func() error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.User), genCfg)
		if err != nil {
			if jobcontext.IsRetryableError(err) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("generate content: %w", err))
		}

		text = responseText(result)
		if text == "" {
			return backoff.Permanent(errors.New("empty response from Gemini"))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = g.maxElapsed

	notify := func(err error, wait time.Duration) {
		g.logger.Warn("⚠️ Gemini call failed, retrying",
			zap.String("model", g.model),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		return "", err
	}
	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
