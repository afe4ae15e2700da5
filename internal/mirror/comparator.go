package mirror

import "fmt"

// Comparator decides whether a file that exists on both sides has changed.
// The reason string is empty when the file is unchanged.
type Comparator interface {
	Changed(remote, local Entry) (bool, string)
}

// SizeTimeComparator treats a file as changed when the sizes differ, or
// when both sides expose a modification time and the remote one is
// strictly newer. Listings without timestamps degrade to size-only, and a
// local copy newer than the remote is left alone.
type SizeTimeComparator struct{}

func (SizeTimeComparator) Changed(remote, local Entry) (bool, string) {
	if remote.Size != local.Size {
		return true, fmt.Sprintf("size %d -> %d", local.Size, remote.Size)
	}
	if remote.ModTime.IsZero() || local.ModTime.IsZero() {
		return false, ""
	}
	if remote.ModTime.After(local.ModTime) {
		return true, "remote is newer"
	}
	return false, ""
}

// SizeOnlyComparator ignores timestamps entirely. Same size means same
// file, which is how coarse FTP listings have traditionally been compared.
type SizeOnlyComparator struct{}

func (SizeOnlyComparator) Changed(remote, local Entry) (bool, string) {
	if remote.Size != local.Size {
		return true, fmt.Sprintf("size %d -> %d", local.Size, remote.Size)
	}
	return false, ""
}
