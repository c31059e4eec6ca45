package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"loom/internal/transcript"
)

// Keys whose values read as the "body" of a list item; rendered first and
// without a label.
var bodyKeys = []string{"quote", "insight", "point", "text"}

// FormatResult renders a stored analysis result as prompt-ready prose.
//
// Prerequisite outputs are heterogeneous (single-field summaries,
// structured key-point lists, post-with-metadata), and downstream prompts
// expect clean text rather than raw JSON whenever a natural string
// representation exists. The rules apply in priority order:
//
//  1. Empty or failed result: empty string.
//  2. Reserved metadata keys are never part of the output.
//  3. Exactly one content key: a string value is returned verbatim; a list
//     value is rendered item by item.
//  4. A string "post" key is returned on its own, regardless of other
//     accompanying fields.
//  5. Anything else: pretty-printed JSON of the content.
func FormatResult(res *transcript.Result) string {
	if res == nil || res.Failed() {
		return ""
	}
	content := make(map[string]any, len(res.Content))
	for k, v := range res.Content {
		// Stored documents predating the tagged result type can still carry
		// stray reserved keys inside content.
		if strings.HasPrefix(k, transcript.MetadataPrefix) {
			continue
		}
		content[k] = v
	}
	if len(content) == 0 {
		return ""
	}

	if len(content) == 1 {
		for _, value := range content {
			switch v := value.(type) {
			case string:
				return v
			case []any:
				return formatList(v)
			}
		}
	}

	if post, ok := content["post"].(string); ok {
		return post
	}

	return prettyJSON(content)
}

func formatList(items []any) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			blocks = append(blocks, fmt.Sprintf("- %v", item))
			continue
		}
		blocks = append(blocks, formatEntry(entry))
	}
	return strings.Join(blocks, "\n\n")
}

func formatEntry(entry map[string]any) string {
	var lines []string
	used := map[string]struct{}{}
	for _, key := range bodyKeys {
		if value, ok := entry[key]; ok {
			lines = append(lines, fmt.Sprintf("- %v", value))
			used[key] = struct{}{}
		}
	}

	rest := make([]string, 0, len(entry))
	for key := range entry {
		if _, ok := used[key]; ok {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		lines = append(lines, fmt.Sprintf("%s: %v", key, entry[key]))
	}
	return strings.Join(lines, "\n")
}

func prettyJSON(value any) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimRight(buf.String(), "\n")
}
