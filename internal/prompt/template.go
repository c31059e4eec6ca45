package prompt

import (
	"fmt"
	"reflect"
	"regexp"
)

var (
	conditionalPattern = regexp.MustCompile(`(?s)\{\{#if\s+([A-Za-z0-9_]+)\s*\}\}(.*?)(?:\{\{else\}\}(.*?))?\{\{/if\}\}`)
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)
)

// Render evaluates conditional blocks, then substitutes placeholders.
//
// A conditional emits its body when the named context value is truthy and
// the else clause (or nothing) otherwise. Placeholders with no matching
// context entry are left verbatim so misconfigured templates stay visible
// in the assembled prompt instead of failing silently.
func Render(template string, context map[string]any) string {
	result := conditionalPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := conditionalPattern.FindStringSubmatch(match)
		name, body, alternative := groups[1], groups[2], groups[3]
		if Truthy(context[name]) {
			return body
		}
		return alternative
	})

	return placeholderPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := context[name]
		if !ok {
			return match
		}
		return Stringify(value)
	})
}

// Truthy reports whether a context value selects the positive branch of a
// conditional. Nil, empty strings, zero numbers, false, and empty
// collections are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Stringify renders a context value for placeholder substitution.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
