package mirror

import "time"

// Kind classifies a directory entry. Anything that is neither a regular
// file nor a directory is reported as KindLink and never touched.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindLink:
		return "symlink"
	}
	return "unknown"
}

// Entry is one item of a directory listing, on either side of the mirror.
// A zero ModTime means the listing did not expose one; the comparator
// falls back to size-only in that case.
type Entry struct {
	Name    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

// Snapshot is one directory level keyed by entry name. Both sides of a
// level are captured as snapshots before planning, so the plan is computed
// over fixed inputs.
type Snapshot map[string]Entry

// NewSnapshot builds a snapshot from a listing. Nameless entries are
// dropped and later duplicates win, so a snapshot maps each name to
// exactly one entry.
func NewSnapshot(entries []Entry) Snapshot {
	s := make(Snapshot, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		s[e.Name] = e
	}
	return s
}
