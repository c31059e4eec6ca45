package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteJSON marshals value and writes it to path, creating parent
// directories as needed.
func WriteJSON(t testing.TB, path string, value any) {
	t.Helper()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("testsupport: marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("testsupport: mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("testsupport: write %s: %v", path, err)
	}
}

// WriteAnalysisType drops a definition file into the configured types dir.
func WriteAnalysisType(t testing.TB, typesDir, name string, def map[string]any) {
	t.Helper()

	if def == nil {
		def = map[string]any{}
	}
	if _, ok := def["name"]; !ok {
		def["name"] = name
	}
	if _, ok := def["prompt"]; !ok {
		def["prompt"] = "Analyze the session."
	}
	WriteJSON(t, filepath.Join(typesDir, name+".json"), def)
}
