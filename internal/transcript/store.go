package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"loom/internal/services"
)

// Store reads and writes transcript documents under a single directory.
//
// Saves rewrite the whole file in one write call. There is no cross-process
// locking; the pipeline assumes at most one in-flight mutation per document.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// List returns the sorted paths of every transcript document in the store.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "list", s.dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads one transcript document.
func (s *Store) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "store", "load", path, err)
		}
		return nil, services.Wrap(services.ErrStorage, "store", "load", path, err)
	}
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "decode", path, err)
	}
	doc.path = path
	return doc, nil
}

// Save rewrites the document in full: UTF-8, not ASCII-escaped, 2-space
// indent. The write is a single complete overwrite, not an append.
func (s *Store) Save(doc *Document) error {
	if doc.path == "" {
		return services.Wrap(services.ErrStorage, "store", "save", "document has no path", nil)
	}
	doc.EnsureAnalysis()

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return services.Wrap(services.ErrStorage, "store", "encode", doc.path, err)
	}
	if err := os.WriteFile(doc.path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrStorage, "store", "write", doc.path, err)
	}
	return nil
}

// Create writes a new document into the store under the given file name.
func (s *Store) Create(name string, doc *Document) error {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return services.Wrap(services.ErrStorage, "store", "create", fmt.Sprintf("%s already exists", path), nil)
	}
	doc.path = path
	return s.Save(doc)
}
