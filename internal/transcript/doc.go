// Package transcript owns the on-disk transcript documents and their
// analysis results.
//
// One JSON file per recorded session holds the raw transcript text,
// metadata, and an analysis map keyed by analysis-type name. Keys fall into
// three classes: plain ("summary", overwritten on re-run), versioned
// ("linkedin_post_2", immutable judge-loop snapshots), and alias
// ("linkedin_post", mirroring the latest round plus _round/_history).
//
// Results are tagged in memory: structured content and run metadata live in
// separate fields, while the JSON encoding keeps the flat shape with
// reserved underscore-prefixed keys. Documents are fully rewritten on every
// save; readers see the most recently completed step.
package transcript
