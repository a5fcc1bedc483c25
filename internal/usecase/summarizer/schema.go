package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// summarySchema mirrors entities.SummaryContent with pointer fields so a
// missing key can be told apart from an empty value.
type summarySchema struct {
	ExecutiveSummary *string            `json:"executive_summary" validate:"required"`
	BulletSummary    []string           `json:"bullet_summary" validate:"required"`
	Decisions        []decisionSchema   `json:"decisions" validate:"required,dive"`
	ActionItems      []actionItemSchema `json:"action_items" validate:"required,dive"`
	Topics           []topicSchema      `json:"topics" validate:"required,dive"`
	Risks            []string           `json:"risks" validate:"required"`
	Questions        []string           `json:"questions" validate:"required"`
}

type decisionSchema struct {
	Decision         *string  `json:"decision" validate:"required"`
	Owner            *string  `json:"owner"`
	TimestampSeconds *float64 `json:"timestamp_seconds"`
	Quote            *string  `json:"quote"`
}

type actionItemSchema struct {
	Task             *string  `json:"task" validate:"required"`
	Owner            *string  `json:"owner"`
	DueDate          *string  `json:"due_date"`
	Confidence       *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
	TimestampSeconds *float64 `json:"timestamp_seconds"`
	Quote            *string  `json:"quote"`
}

type topicSchema struct {
	Title            *string          `json:"title" validate:"required"`
	StartTimeSeconds *float64         `json:"start_time_seconds" validate:"required"`
	Summary          *string          `json:"summary" validate:"required"`
	KeyQuotes        []keyQuoteSchema `json:"key_quotes" validate:"omitempty,dive"`
}

type keyQuoteSchema struct {
	Quote            *string  `json:"quote" validate:"required"`
	Speaker          *string  `json:"speaker"`
	TimestampSeconds *float64 `json:"timestamp_seconds"`
}

// summaryShape is embedded in the merge prompt
const summaryShape = `{
  "executive_summary": "string",
  "bullet_summary": ["string"],
  "decisions": [{"decision": "string", "owner": "string|null", "timestamp_seconds": "number|null", "quote": "string|null"}],
  "action_items": [{"task": "string", "owner": "string|null", "due_date": "YYYY-MM-DD|null", "confidence": "number", "timestamp_seconds": "number|null", "quote": "string|null"}],
  "topics": [{"title": "string", "start_time_seconds": "number", "summary": "string", "key_quotes": [{"quote": "string", "speaker": "string|null", "timestamp_seconds": "number|null"}]}],
  "risks": ["string"],
  "questions": ["string"]
}`

// parseSummary decodes raw model output and checks it against the schema
func parseSummary(v *validator.Validate, raw string) (*entities.SummaryContent, error) {
	var s summarySchema
	if err := json.Unmarshal([]byte(extractJSON(raw)), &s); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.Struct(&s); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return s.toContent(), nil
}

// extractJSON strips markdown code fences and surrounding prose
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func (s *summarySchema) toContent() *entities.SummaryContent {
	out := &entities.SummaryContent{
		ExecutiveSummary: *s.ExecutiveSummary,
		BulletSummary:    s.BulletSummary,
		Decisions:        make([]entities.Decision, 0, len(s.Decisions)),
		ActionItems:      make([]entities.SummaryActionItem, 0, len(s.ActionItems)),
		Topics:           make([]entities.Topic, 0, len(s.Topics)),
		Risks:            s.Risks,
		Questions:        s.Questions,
	}

	for _, d := range s.Decisions {
		out.Decisions = append(out.Decisions, entities.Decision{
			Decision:         *d.Decision,
			Owner:            d.Owner,
			TimestampSeconds: d.TimestampSeconds,
			Quote:            d.Quote,
		})
	}
	for _, a := range s.ActionItems {
		out.ActionItems = append(out.ActionItems, entities.SummaryActionItem{
			Task:             *a.Task,
			Owner:            a.Owner,
			DueDate:          a.DueDate,
			Confidence:       *a.Confidence,
			TimestampSeconds: a.TimestampSeconds,
			Quote:            a.Quote,
		})
	}
	for _, t := range s.Topics {
		topic := entities.Topic{
			Title:            *t.Title,
			StartTimeSeconds: *t.StartTimeSeconds,
			Summary:          *t.Summary,
		}
		for _, q := range t.KeyQuotes {
			topic.KeyQuotes = append(topic.KeyQuotes, entities.KeyQuote{
				Quote:            *q.Quote,
				Speaker:          q.Speaker,
				TimestampSeconds: q.TimestampSeconds,
			})
		}
		out.Topics = append(out.Topics, topic)
	}
	return out
}
