package prompt

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	out := Render("Summarize {{title}} in {{language}}.", map[string]any{
		"title":    "Weekly Sync",
		"language": "English",
	})
	if out != "Summarize Weekly Sync in English." {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Use {{missing}} here.", map[string]any{})
	if out != "Use {{missing}} here." {
		t.Fatalf("unmatched placeholder should pass through, got %q", out)
	}
}

func TestRenderConditionalTruthiness(t *testing.T) {
	template := "{{#if x}}{{x}}{{else}}N{{/if}}"
	cases := []struct {
		name    string
		context map[string]any
		want    string
	}{
		{"empty string", map[string]any{"x": ""}, "N"},
		{"nil value", map[string]any{"x": nil}, "N"},
		{"absent key", map[string]any{}, "N"},
		{"non-empty string", map[string]any{"x": "v"}, "v"},
		{"whitespace-only string", map[string]any{"x": " "}, " "},
		{"zero int", map[string]any{"x": 0}, "N"},
		{"empty slice", map[string]any{"x": []string{}}, "N"},
		{"populated slice", map[string]any{"x": []string{"a"}}, "[a]"},
		{"false", map[string]any{"x": false}, "N"},
		{"true", map[string]any{"x": true}, "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(template, tc.context); got != tc.want {
				t.Fatalf("Render = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderConditionalWithoutElse(t *testing.T) {
	if got := Render("a{{#if x}}b{{/if}}c", map[string]any{}); got != "ac" {
		t.Fatalf("expected empty false branch, got %q", got)
	}
	if got := Render("a{{#if x}}b{{/if}}c", map[string]any{"x": "y"}); got != "abc" {
		t.Fatalf("expected body emitted, got %q", got)
	}
}

func TestRenderConditionalSpansLines(t *testing.T) {
	template := "{{#if notes}}Notes:\n{{notes}}\n{{else}}No notes.\n{{/if}}Done."
	got := Render(template, map[string]any{"notes": "a\nb"})
	if got != "Notes:\na\nb\nDone." {
		t.Fatalf("unexpected multiline render: %q", got)
	}
}

// Nested conditionals are unsupported: the first {{/if}} closes the nearest
// preceding {{#if}}, leaving stray markers behind. This pins the flattening
// behavior authored templates depend on.
func TestRenderNestedConditionalFlattens(t *testing.T) {
	template := "{{#if a}}1{{#if b}}2{{/if}}3{{/if}}"
	got := Render(template, map[string]any{"a": "x", "b": "y"})
	if got == "123" {
		t.Fatal("nesting must not silently work; templates rely on flattening")
	}
	if !strings.Contains(got, "{{") {
		t.Fatalf("expected leftover block markers, got %q", got)
	}
}
