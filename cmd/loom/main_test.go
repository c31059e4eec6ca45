package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"loom/internal/config"
	"loom/internal/testsupport"
	"loom/internal/transcript"
)

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fakeLLMServer answers chat-completion requests with the given content
// payload.
func fakeLLMServer(t *testing.T, content map[string]any) *httptest.Server {
	t.Helper()
	encoded, err := json.Marshal(content)
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"content": string(encoded)},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("output = %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := writeTestConfig(t, cfg)

	out, err := runCLI(t, "config", "validate", "--file", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("output = %q", out)
	}
}

func TestAnalyzeCommandEndToEnd(t *testing.T) {
	server := fakeLLMServer(t, map[string]any{"summary": "a concise summary"})

	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.URL))
	store := testsupport.NewStore(t, cfg)
	testsupport.SeedTranscript(t, store, "standup", &transcript.Document{
		Title:      "Standup",
		Transcript: "we discussed the roadmap",
	})
	if err := os.MkdirAll(cfg.Paths.AnalysisTypesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteAnalysisType(t, cfg.Paths.AnalysisTypesDir, "summary", map[string]any{
		"prompt": "Summarize the session.",
	})
	configPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, "--config", configPath, "analyze", "standup", "summary")
	if err != nil {
		t.Fatalf("analyze: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "a concise summary") {
		t.Fatalf("output = %q", out)
	}

	doc, err := store.Load(filepath.Join(cfg.Paths.TranscriptsDir, "standup.json"))
	if err != nil {
		t.Fatal(err)
	}
	res := doc.Analysis["summary"]
	if res == nil || res.Failed() {
		t.Fatalf("persisted result = %+v", res)
	}
	if res.Content["summary"] != "a concise summary" {
		t.Fatalf("content = %+v", res.Content)
	}
}

func TestTypesCheckReportsCycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.AnalysisTypesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteAnalysisType(t, cfg.Paths.AnalysisTypesDir, "a", map[string]any{
		"prompt":   "p",
		"requires": []string{"b"},
	})
	testsupport.WriteAnalysisType(t, cfg.Paths.AnalysisTypesDir, "b", map[string]any{
		"prompt":   "p",
		"requires": []string{"a"},
	})
	configPath := writeTestConfig(t, cfg)

	_, err := runCLI(t, "--config", configPath, "types", "check")
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("err = %v, want cycle report", err)
	}
}

func TestShowCommandRendersMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)
	testsupport.SeedTranscript(t, store, "kickoff", &transcript.Document{
		Title:           "Kickoff",
		Decimal:         "12.03",
		Language:        "en",
		DurationSeconds: 125,
		Analysis: map[string]*transcript.Result{
			"summary": {Content: map[string]any{"summary": "done"}},
		},
	})
	configPath := writeTestConfig(t, cfg)

	out, err := runCLI(t, "--config", configPath, "show", "kickoff")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Kickoff", "12.03", "English", "2m05s", "summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
