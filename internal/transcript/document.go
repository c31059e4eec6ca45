package transcript

// Document is one transcribed session. The transcript text is immutable
// once written; the analysis map grows monotonically (plain and alias
// entries may be replaced, versioned entries never are).
type Document struct {
	Title           string             `json:"title"`
	Decimal         string             `json:"decimal,omitempty"`
	Language        string             `json:"language,omitempty"`
	RecordedAt      string             `json:"recorded_at,omitempty"`
	DurationSeconds float64            `json:"duration_seconds,omitempty"`
	Source          string             `json:"source,omitempty"`
	Transcript      string             `json:"transcript"`
	Analysis        map[string]*Result `json:"analysis"`

	path string
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string { return d.path }

// SetPath records where the document persists. The store sets this on load.
func (d *Document) SetPath(path string) { d.path = path }

// EnsureAnalysis initializes the analysis map so callers can insert into it.
func (d *Document) EnsureAnalysis() map[string]*Result {
	if d.Analysis == nil {
		d.Analysis = map[string]*Result{}
	}
	return d.Analysis
}
