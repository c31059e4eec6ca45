package analysis

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"loom/internal/llm"
	"loom/internal/transcript"
)

func writeDefinition(t *testing.T, dir string, def *Definition) {
	t.Helper()
	data, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("marshal definition: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, def.Name+".json"), data, 0o644); err != nil {
		t.Fatalf("write definition: %v", err)
	}
}

// scriptedInvoker replays canned responses keyed by a routing function and
// records every request it sees.
type scriptedInvoker struct {
	mu        sync.Mutex
	requests  []llm.Request
	responses map[string][]scriptedResponse
}

type scriptedResponse struct {
	content map[string]any
	err     error
}

func newScriptedInvoker() *scriptedInvoker {
	return &scriptedInvoker{responses: map[string][]scriptedResponse{}}
}

// respond queues a response for requests whose schema carries the given
// marker title. Responses for the same marker are consumed in order; the
// last one repeats.
func (s *scriptedInvoker) respond(marker string, content map[string]any) {
	s.responses[marker] = append(s.responses[marker], scriptedResponse{content: content})
}

func (s *scriptedInvoker) fail(marker string, err error) {
	s.responses[marker] = append(s.responses[marker], scriptedResponse{err: err})
}

func (s *scriptedInvoker) Invoke(_ context.Context, req llm.Request) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	marker, _ := req.Schema["title"].(string)
	queue := s.responses[marker]
	if len(queue) == 0 {
		return map[string]any{"text": "unscripted"}, nil
	}
	next := queue[0]
	if len(queue) > 1 {
		s.responses[marker] = queue[1:]
	}
	return next.content, next.err
}

func (s *scriptedInvoker) calls() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.requests...)
}

// markerSchema tags a definition's schema so the scripted invoker can route
// responses without parsing prompts.
func markerSchema(marker string) map[string]any {
	return map[string]any{"title": marker, "type": "object"}
}

func newTestStore(t *testing.T, doc *transcript.Document) *transcript.Store {
	t.Helper()
	store := transcript.NewStore(t.TempDir())
	if err := store.Create("session", doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return store
}
