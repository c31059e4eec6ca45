package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks unknown analysis types, malformed definitions,
	// and other fatal setup problems. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrPrerequisite marks a required analysis input that failed to produce
	// a result. Propagates as a hard failure through the whole chain.
	ErrPrerequisite = errors.New("prerequisite failure")
	// ErrInvocation marks an LLM boundary failure after retries are exhausted.
	ErrInvocation = errors.New("invocation failure")
	// ErrJudge marks a failed judge evaluation; the draft stays valid.
	ErrJudge = errors.New("judge failure")
	// ErrStorage marks transcript store I/O failures.
	ErrStorage = errors.New("storage error")
	// ErrNotFound marks missing transcripts or analysis entries.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrInvocation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the current item outright
// rather than being folded into an error-bearing analysis result.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrPrerequisite) ||
		errors.Is(err, ErrStorage)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
