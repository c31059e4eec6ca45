package services

import "context"

type contextKey string

const (
	transcriptKey contextKey = "transcript"
	analysisKey   contextKey = "analysis_type"
	requestIDKey  contextKey = "request_id"
)

// WithTranscript annotates context with the transcript document path.
func WithTranscript(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, transcriptKey, path)
}

// TranscriptFromContext returns the transcript path if present.
func TranscriptFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(transcriptKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAnalysisType annotates context with the analysis type being run.
func WithAnalysisType(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, analysisKey, name)
}

// AnalysisTypeFromContext returns the analysis type name if present.
func AnalysisTypeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(analysisKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
