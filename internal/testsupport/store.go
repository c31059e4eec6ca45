package testsupport

import (
	"os"
	"testing"

	"loom/internal/config"
	"loom/internal/transcript"
)

// NewStore creates the transcripts dir from cfg and returns a store over it.
func NewStore(t testing.TB, cfg *config.Config) *transcript.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.TranscriptsDir, 0o755); err != nil {
		t.Fatalf("testsupport: mkdir transcripts dir: %v", err)
	}
	return transcript.NewStore(cfg.Paths.TranscriptsDir)
}

// SeedTranscript creates one document in the store.
func SeedTranscript(t testing.TB, store *transcript.Store, name string, doc *transcript.Document) *transcript.Document {
	t.Helper()

	if doc == nil {
		doc = &transcript.Document{}
	}
	if doc.Title == "" {
		doc.Title = name
	}
	if doc.Transcript == "" {
		doc.Transcript = "transcript text for " + name
	}
	if err := store.Create(name, doc); err != nil {
		t.Fatalf("testsupport: seed transcript %s: %v", name, err)
	}
	return doc
}
