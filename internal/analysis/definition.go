package analysis

// Definition describes one configured analysis type. Definitions are
// immutable once loaded; the registry caches them by name.
type Definition struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Prompt       string         `json:"prompt"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`

	// Requires lists analysis types that must exist before this one runs.
	// Missing entries are auto-run recursively, in declaration order.
	Requires []string `json:"requires,omitempty"`

	// OptionalInputs are included in the prompt context only when already
	// present; they are never auto-run.
	OptionalInputs []string `json:"optional_inputs,omitempty"`

	// SkipRawTranscript suppresses appending the raw transcript text to the
	// prompt; used by types that work purely from prerequisite outputs.
	SkipRawTranscript bool `json:"skip_raw_transcript,omitempty"`

	// SystemInstruction is an optional separate instruction-channel string.
	SystemInstruction string `json:"system_instruction,omitempty"`
}
