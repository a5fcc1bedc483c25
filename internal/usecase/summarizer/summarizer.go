// Package summarizer turns a meeting transcript into a validated structured
// summary using a text generation model.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
	"github.com/johnquangdev/meeting-pipeline/pkg/ai"
)

// DefaultChunkSize is the largest transcript slice sent in one model call, in characters
const DefaultChunkSize = 10000

// Model generates text for a prompt
type Model interface {
	Generate(ctx context.Context, prompt ai.Prompt) (string, error)
}

// Engine runs the chunk, merge and repair flow
type Engine struct {
	model     Model
	validate  *validator.Validate
	chunkSize int
	logger    *zap.Logger
}

// New creates an Engine backed by model
func New(model Model, logger *zap.Logger) *Engine {
	return &Engine{
		model:     model,
		validate:  validator.New(),
		chunkSize: DefaultChunkSize,
		logger:    logger,
	}
}

// Summarize summarizes every chunk of a long transcript, merges the partial
// summaries (or the whole short transcript) into one JSON document and
// validates it. Output that fails
// validation gets one repair round before ErrSummarization is returned.
func (e *Engine) Summarize(ctx context.Context, title, transcript string) (*entities.SummaryContent, error) {
	chunks := ChunkText(transcript, e.chunkSize)

	if e.logger != nil {
		e.logger.Info("🤖 Summarizing transcript",
			zap.String("title", title),
			zap.Int("chunks", len(chunks)),
		)
	}

	// A single chunk goes to the merge step as raw transcript
	parts := []string{transcript}
	if len(chunks) > 1 {
		parts = make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			part, err := e.model.Generate(ctx, chunkPrompt(i+1, len(chunks), chunk))
			if err != nil {
				return nil, fmt.Errorf("%w: chunk %d/%d: %w", ucerr.ErrSummarization, i+1, len(chunks), err)
			}
			parts = append(parts, part)
		}
	}

	raw, err := e.model.Generate(ctx, mergePrompt(title, parts))
	if err != nil {
		return nil, fmt.Errorf("%w: merge: %w", ucerr.ErrSummarization, err)
	}

	content, err := parseSummary(e.validate, raw)
	if err == nil {
		return content, nil
	}

	if e.logger != nil {
		e.logger.Warn("⚠️ Summary failed validation, attempting repair",
			zap.String("title", title),
			zap.Error(err),
		)
	}

	fixed, genErr := e.model.Generate(ctx, repairPrompt(err, raw))
	if genErr != nil {
		return nil, fmt.Errorf("%w: repair: %w", ucerr.ErrSummarization, genErr)
	}

	content, err = parseSummary(e.validate, fixed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ucerr.ErrSummarization, err)
	}
	return content, nil
}

// ChunkText splits text into consecutive pieces of at most size characters.
// Text no longer than size comes back as a single chunk.
func ChunkText(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

const chunkSystemPrompt = "You are an expert meeting assistant. Summarize this part of a meeting. Focus on core discussions, decisions, and outcomes."

func chunkPrompt(index, total int, chunk string) ai.Prompt {
	return ai.Prompt{
		System: chunkSystemPrompt,
		User:   fmt.Sprintf("Part %d/%d of meeting transcript:\n\n%s", index, total, chunk),
	}
}

func mergePrompt(title string, parts []string) ai.Prompt {
	system := fmt.Sprintf(`You are an expert meeting assistant. Create a comprehensive JSON summary of the meeting titled "%s" from the partial summaries below.
Output JSON with exactly this shape:
%s

Rules:
- Use empty arrays when a section has nothing to report.
- Use null for unknown owners, due dates, timestamps and quotes.
- Confidence mapping: 0 to 1.`, title, summaryShape)

	return ai.Prompt{
		System: system,
		User:   "Summaries to merge:\n\n" + strings.Join(parts, "\n\n---\n\n"),
		JSON:   true,
	}
}

func repairPrompt(cause error, raw string) ai.Prompt {
	return ai.Prompt{
		System: fmt.Sprintf("You are a JSON fixer. The following JSON failed validation. Fix it to match the schema exactly.\nThe error was: %s\nOutput ONLY the valid JSON.", cause),
		User:   raw,
		JSON:   true,
	}
}
