package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/services"
)

func TestRegistryLoadUnknownType(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	_, err := registry.Load("nope")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), `unknown analysis type "nope"`) {
		t.Fatalf("err = %v, want unknown-type message", err)
	}
}

func TestRegistryLoadAndCache(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{
		Name:     "summary",
		Prompt:   "Summarize: {{transcript}}",
		Requires: []string{},
	})

	registry := NewRegistry(dir)
	def, err := registry.Load("summary")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if def.Name != "summary" {
		t.Fatalf("Name = %q", def.Name)
	}

	again, err := registry.Load("summary")
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again != def {
		t.Fatal("cached definition not reused")
	}
}

func TestRegistryRejectsNameMismatch(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`{"name": "wrong", "prompt": "p"}`)
	if err := os.WriteFile(filepath.Join(dir, "right.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry(dir)
	if _, err := registry.Load("right"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRegistryRejectsEmptyPrompt(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{Name: "empty", Prompt: "   "})

	registry := NewRegistry(dir)
	if _, err := registry.Load("empty"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeDefinition(t, dir, &Definition{Name: name, Prompt: "p"})
	}

	names, err := NewRegistry(dir).Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names = %v, want %v", names, want)
		}
	}
}

func TestRegistryCycleDetection(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{Name: "a", Prompt: "p", Requires: []string{"b"}})
	writeDefinition(t, dir, &Definition{Name: "b", Prompt: "p", Requires: []string{"a"}})

	registry := NewRegistry(dir)
	err := registry.CheckCycles("a")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("err = %v, want cycle message", err)
	}
}

func TestRegistrySelfCycle(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{Name: "loop", Prompt: "p", Requires: []string{"loop"}})

	if err := NewRegistry(dir).CheckCycles("loop"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestRegistryValidate(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{Name: "summary", Prompt: "p"})
	writeDefinition(t, dir, &Definition{
		Name:           "post",
		Prompt:         "p",
		Requires:       []string{"summary"},
		OptionalInputs: []string{"summary"},
	})

	if err := NewRegistry(dir).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRegistryValidateMissingOptionalInput(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, &Definition{
		Name:           "post",
		Prompt:         "p",
		OptionalInputs: []string{"ghost"},
	})

	err := NewRegistry(dir).Validate()
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("err = %v, want the missing type named", err)
	}
}
