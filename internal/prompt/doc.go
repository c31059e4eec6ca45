// Package prompt renders analysis prompt templates.
//
// Templates use {{name}} placeholders and single-level conditional blocks:
//
//	{{#if name}} body {{else}} alternative {{/if}}
//
// Conditional blocks DO NOT NEST. The first {{/if}} closes the nearest
// preceding {{#if}}, so nesting produces malformed output. Authored
// templates rely on this exact flattening behavior; do not replace the
// matcher with a nesting-aware parser without auditing every template.
package prompt
