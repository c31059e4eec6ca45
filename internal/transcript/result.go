package transcript

import (
	"encoding/json"
	"fmt"
	"time"
)

// MetadataPrefix marks reserved result keys that are not analysis content.
const MetadataPrefix = "_"

// Reserved result keys used by the flat JSON encoding.
const (
	keyModel      = "_model"
	keyAnalyzedAt = "_analyzed_at"
	keyError      = "error"
	keyRound      = "_round"
	keyHistory    = "_history"
)

// Result holds one analysis outcome. Content carries the model's structured
// output; run metadata travels alongside instead of being mixed into the
// content map. The JSON encoding flattens everything back into a single
// object so stored documents keep the established shape.
type Result struct {
	Content    map[string]any
	Model      string
	AnalyzedAt string
	ErrMessage string

	// Round and History are populated on judge-loop alias entries only.
	Round   *int
	History *History
}

// History summarizes judge scores across all completed rounds.
type History struct {
	Scores []Score `json:"scores"`
}

// Score is one round's judge verdict.
type Score struct {
	Round    int            `json:"round"`
	Overall  float64        `json:"overall"`
	Criteria map[string]any `json:"criteria,omitempty"`
}

// NewResult builds a successful result stamped with run metadata.
func NewResult(content map[string]any, model string, analyzedAt time.Time) *Result {
	if content == nil {
		content = map[string]any{}
	}
	return &Result{
		Content:    content,
		Model:      model,
		AnalyzedAt: analyzedAt.UTC().Format(time.RFC3339),
	}
}

// NewErrorResult builds a failed result. Failure suppresses run metadata.
func NewErrorResult(message string) *Result {
	return &Result{ErrMessage: message}
}

// Failed reports whether the result carries an error instead of content.
func (r *Result) Failed() bool {
	return r != nil && r.ErrMessage != ""
}

// Clone returns a copy with a shallow copy of the content map. Round and
// History are not carried over; versioned snapshots never hold them.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	content := make(map[string]any, len(r.Content))
	for k, v := range r.Content {
		content[k] = v
	}
	return &Result{
		Content:    content,
		Model:      r.Model,
		AnalyzedAt: r.AnalyzedAt,
		ErrMessage: r.ErrMessage,
	}
}

// MarshalJSON flattens the result into a single JSON object. Metadata keys
// appear only on success; error suppresses them.
func (r *Result) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Content)+4)
	for k, v := range r.Content {
		flat[k] = v
	}
	if r.ErrMessage != "" {
		flat[keyError] = r.ErrMessage
	} else {
		if r.Model != "" {
			flat[keyModel] = r.Model
		}
		if r.AnalyzedAt != "" {
			flat[keyAnalyzedAt] = r.AnalyzedAt
		}
	}
	if r.Round != nil {
		flat[keyRound] = *r.Round
	}
	if r.History != nil {
		flat[keyHistory] = r.History
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the flat stored object back into content and metadata.
func (r *Result) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = Result{Content: make(map[string]any, len(flat))}
	for k, v := range flat {
		switch k {
		case keyModel:
			if s, ok := v.(string); ok {
				r.Model = s
			}
		case keyAnalyzedAt:
			if s, ok := v.(string); ok {
				r.AnalyzedAt = s
			}
		case keyError:
			if s, ok := v.(string); ok {
				r.ErrMessage = s
			} else {
				r.ErrMessage = fmt.Sprint(v)
			}
		case keyRound:
			if f, ok := v.(float64); ok {
				round := int(f)
				r.Round = &round
			}
		case keyHistory:
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("re-encode history: %w", err)
			}
			history := new(History)
			if err := json.Unmarshal(encoded, history); err != nil {
				return fmt.Errorf("decode history: %w", err)
			}
			r.History = history
		default:
			r.Content[k] = v
		}
	}
	return nil
}
