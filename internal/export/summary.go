package export

// EntryKind tells pages and assets apart.
type EntryKind string

const (
	KindPage  EntryKind = "page"
	KindAsset EntryKind = "asset"
)

// Status is the outcome recorded for an entry.
type Status string

const (
	StatusIgnore    Status = "ignore"
	StatusError     Status = "error"
	StatusMissing   Status = "missing"
	StatusOutdated  Status = "outdated"
	StatusUpToDate  Status = "uptodate"
	StatusGenerated Status = "generated"
	StatusReady     Status = "ready"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// AssetType classifies an asset source.
type AssetType string

const (
	AssetDir  AssetType = "dir"
	AssetFile AssetType = "file"
)

// Entry is one record of a run.
type Entry struct {
	Kind   EntryKind `json:"kind"`
	Source string    `json:"source"`
	// Dest is the absolute destination; empty when none could be computed.
	Dest   string `json:"dest,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Size   *int64 `json:"size,omitempty"`
	// Files lists secondary files copied alongside a generated page.
	Files []string `json:"files,omitempty"`
	// FileCount is the number of attached files a write would copy (dry runs).
	FileCount int       `json:"file_count,omitempty"`
	Title     string    `json:"title,omitempty"`
	URI       string    `json:"uri,omitempty"`
	Lang      string    `json:"lang,omitempty"`
	AssetType AssetType `json:"asset_type,omitempty"`
}

// Summary is the ordered, append-only log of a run.
type Summary struct {
	entries []Entry
}

// Reset drops all entries.
func (s *Summary) Reset() { s.entries = nil }

// Append records e.
func (s *Summary) Append(e Entry) { s.entries = append(s.entries, e) }

// Len returns the number of entries.
func (s *Summary) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in append order.
func (s *Summary) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func sizePtr(n int64) *int64 { return &n }
