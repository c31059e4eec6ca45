// Package catalog maintains a rebuildable SQLite index over the transcript
// store. The JSON documents stay the source of truth; the index only powers
// fast listing and filtering, and can be rebuilt from the store at any time.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"loom/internal/services"
	"loom/internal/transcript"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the index schema changes. A mismatched
// database is rebuilt from scratch rather than migrated; the index holds no
// authoritative data.
const schemaVersion = 1

// Entry is one indexed transcript.
type Entry struct {
	Path            string
	Title           string
	Decimal         string
	Language        string
	RecordedAt      string
	DurationSeconds float64
	AnalysisKeys    []string
	IndexedAt       string
}

// Catalog is the SQLite-backed index.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "catalog", "open", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "catalog", "open", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "catalog", "pragma", pragma, execErr)
		}
	}

	c := &Catalog{db: db, path: path}
	if err := c.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Path returns the database file location.
func (c *Catalog) Path() string { return c.path }

func (c *Catalog) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return services.Wrap(services.ErrStorage, "catalog", "schema", "check version table", err)
	}

	if tableExists == 1 {
		var version int
		if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return services.Wrap(services.ErrStorage, "catalog", "schema", "read version", err)
		}
		if version == schemaVersion {
			return nil
		}
		// Stale schema: drop everything, the next Rebuild repopulates.
		if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS transcripts; DROP TABLE IF EXISTS schema_version"); err != nil {
			return services.Wrap(services.ErrStorage, "catalog", "schema", "drop stale schema", err)
		}
	}

	return c.createSchema(ctx)
}

func (c *Catalog) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStorage, "catalog", "schema", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return services.Wrap(services.ErrStorage, "catalog", "schema", "create", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return services.Wrap(services.ErrStorage, "catalog", "schema", "stamp version", err)
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStorage, "catalog", "schema", "commit", err)
	}
	return nil
}

// Rebuild scans the transcript store and replaces the whole index in one
// transaction. Documents that fail to decode are skipped and counted, not
// fatal: a single corrupt file must not hide the rest of the library.
func (c *Catalog) Rebuild(ctx context.Context, store *transcript.Store) (indexed, skipped int, err error) {
	paths, err := store.List()
	if err != nil {
		return 0, 0, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrStorage, "catalog", "rebuild", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transcripts"); err != nil {
		return 0, 0, services.Wrap(services.ErrStorage, "catalog", "rebuild", "clear", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, path := range paths {
		doc, loadErr := store.Load(path)
		if loadErr != nil {
			skipped++
			continue
		}
		keys := analysisKeys(doc)
		_, insErr := tx.ExecContext(ctx,
			`INSERT INTO transcripts (path, title, decimal, language, recorded_at, duration_seconds, analysis_keys, indexed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			path, doc.Title, doc.Decimal, doc.Language, doc.RecordedAt, doc.DurationSeconds,
			strings.Join(keys, ","), now)
		if insErr != nil {
			return 0, 0, services.Wrap(services.ErrStorage, "catalog", "rebuild", path, insErr)
		}
		indexed++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, services.Wrap(services.ErrStorage, "catalog", "rebuild", "commit", err)
	}
	return indexed, skipped, nil
}

// ListFilter narrows List output. Zero value means no filtering.
type ListFilter struct {
	// DecimalPrefix matches hierarchical category codes, e.g. "12" matches
	// "12.03".
	DecimalPrefix string
	// TitleContains is a case-insensitive substring match.
	TitleContains string
}

// List returns indexed transcripts ordered by decimal then title.
func (c *Catalog) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `SELECT path, title, decimal, language, recorded_at, duration_seconds, analysis_keys, indexed_at
		FROM transcripts WHERE 1=1`
	var args []any
	if filter.DecimalPrefix != "" {
		query += " AND decimal LIKE ?"
		args = append(args, filter.DecimalPrefix+"%")
	}
	if filter.TitleContains != "" {
		query += " AND lower(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.TitleContains)+"%")
	}
	query += " ORDER BY decimal, title"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "catalog", "list", "", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var keys string
		if err := rows.Scan(&entry.Path, &entry.Title, &entry.Decimal, &entry.Language,
			&entry.RecordedAt, &entry.DurationSeconds, &keys, &entry.IndexedAt); err != nil {
			return nil, services.Wrap(services.ErrStorage, "catalog", "list", "scan", err)
		}
		if keys != "" {
			entry.AnalysisKeys = strings.Split(keys, ",")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "catalog", "list", "rows", err)
	}
	return entries, nil
}

// Count returns the number of indexed transcripts.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM transcripts").Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStorage, "catalog", "count", "", err)
	}
	return count, nil
}

// analysisKeys lists the plain and alias analysis keys of a document,
// sorted. Versioned round snapshots are excluded to keep the index compact.
func analysisKeys(doc *transcript.Document) []string {
	var keys []string
	for key := range doc.Analysis {
		if versioned(doc, key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func versioned(doc *transcript.Document, key string) bool {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 {
		return false
	}
	base := key[:idx]
	if _, ok := doc.Analysis[base]; !ok {
		return false
	}
	_, isRound := transcript.ParseRound(key, base)
	return isRound
}
