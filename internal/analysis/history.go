package analysis

import (
	"encoding/json"

	"loom/internal/transcript"
)

// JudgeFeedbackVar is the reserved context key carrying serialized
// round history for improvement prompts.
const JudgeFeedbackVar = "judge_feedback"

// HistoryEntry is one prior round as fed back to the draft prompt.
type HistoryEntry struct {
	Round int            `json:"round"`
	Draft string         `json:"draft"`
	Judge *JudgeFeedback `json:"judge,omitempty"`
}

// JudgeFeedback carries the judge verdict fields the improvement prompt
// cares about.
type JudgeFeedback struct {
	OverallScore  any `json:"overall_score,omitempty"`
	Scores        any `json:"scores,omitempty"`
	Improvements  any `json:"improvements,omitempty"`
	RewrittenHook any `json:"rewritten_hook,omitempty"`
}

// BuildHistory reconstructs the round history for a judge-loop type purely
// from versioned keys in the analysis map. It is deterministic over an
// unmodified map, which is what makes the loop resumable after a restart:
// history is never trusted to in-memory state.
//
// Only completed draft rounds appear; a round's judge section is present
// only when the versioned judge result exists and succeeded.
func BuildHistory(analysis map[string]*transcript.Result, draftType, judgeType string) []HistoryEntry {
	var entries []HistoryEntry
	for _, round := range transcript.Rounds(analysis, draftType) {
		draft := analysis[transcript.VersionedKey(draftType, round)]
		if draft == nil || draft.Failed() {
			continue
		}
		entry := HistoryEntry{Round: round, Draft: FormatResult(draft)}
		if judge := analysis[transcript.VersionedKey(judgeType, round)]; judge != nil && !judge.Failed() {
			entry.Judge = &JudgeFeedback{
				OverallScore:  judge.Content["overall_score"],
				Scores:        judge.Content["scores"],
				Improvements:  judge.Content["improvements"],
				RewrittenHook: judge.Content["rewritten_hook"],
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// EncodeHistory serializes round history for prompt injection.
func EncodeHistory(entries []HistoryEntry) (string, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ScoreHistory builds the alias score summary by scanning every versioned
// judge key up to and including round. The alias always carries the
// complete history, never an incremental patch.
func ScoreHistory(analysis map[string]*transcript.Result, judgeType string, round int) *transcript.History {
	history := &transcript.History{}
	for _, r := range transcript.Rounds(analysis, judgeType) {
		if r > round {
			break
		}
		judge := analysis[transcript.VersionedKey(judgeType, r)]
		if judge == nil || judge.Failed() {
			continue
		}
		score := transcript.Score{Round: r}
		if overall, ok := judge.Content["overall_score"].(float64); ok {
			score.Overall = overall
		}
		if criteria, ok := judge.Content["scores"].(map[string]any); ok {
			score.Criteria = criteria
		}
		history.Scores = append(history.Scores, score)
	}
	return history
}
