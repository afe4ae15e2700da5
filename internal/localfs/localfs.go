// Package localfs adapts a billy filesystem to the mirror engine's local
// side: snapshot listing plus the create and remove primitives the
// executor needs. Production passes run on an osfs root; tests run the
// same code on memfs.
package localfs

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"ftpmirror/internal/mirror"
)

// Mirror is the local mirror directory, rooted at a billy filesystem. All
// paths handed to it are relative to that root.
type Mirror struct {
	fs billy.Filesystem
}

// New opens the local mirror rooted at dir on the host filesystem.
func New(dir string) *Mirror {
	return &Mirror{fs: osfs.New(dir)}
}

// NewFromBilly roots the mirror at an existing filesystem, typically
// memfs in tests.
func NewFromBilly(fs billy.Filesystem) *Mirror {
	return &Mirror{fs: fs}
}

// List returns the entries of one directory. A missing directory reports
// mirror.ErrNotFound so callers can tell absent from empty.
func (m *Mirror) List(path string) ([]mirror.Entry, error) {
	infos, err := m.fs.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("localfs: list %q: %w", path, mirror.ErrNotFound)
		}
		return nil, fmt.Errorf("localfs: list %q: %w", path, err)
	}

	// Some backends hand back an empty listing for a directory that does
	// not exist. The root always exists, anything else gets stat-checked.
	if len(infos) == 0 && !isRoot(path) {
		if _, serr := m.fs.Stat(path); serr != nil {
			if os.IsNotExist(serr) {
				return nil, fmt.Errorf("localfs: list %q: %w", path, mirror.ErrNotFound)
			}
			return nil, fmt.Errorf("localfs: list %q: %w", path, serr)
		}
	}

	entries := make([]mirror.Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, mirror.Entry{
			Name:    info.Name(),
			Kind:    kindOf(info),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

func isRoot(path string) bool {
	return path == "" || path == "." || path == "/"
}

func kindOf(info os.FileInfo) mirror.Kind {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return mirror.KindLink
	case info.IsDir():
		return mirror.KindDir
	case info.Mode().IsRegular():
		return mirror.KindFile
	default:
		// Sockets, devices and the like are never mirror-managed.
		return mirror.KindLink
	}
}

// MkdirAll creates a directory and any missing parents. An existing
// directory is fine.
func (m *Mirror) MkdirAll(path string) error {
	if err := m.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("localfs: mkdir %q: %w", path, err)
	}
	return nil
}

// Create opens a file for writing, truncating any existing content.
func (m *Mirror) Create(path string) (io.WriteCloser, error) {
	f, err := m.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: create %q: %w", path, err)
	}
	return f, nil
}

// Remove deletes one file. A missing file reports mirror.ErrNotFound.
func (m *Mirror) Remove(path string) error {
	if err := m.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("localfs: remove %q: %w", path, mirror.ErrNotFound)
		}
		return fmt.Errorf("localfs: remove %q: %w", path, err)
	}
	return nil
}

// RemoveAll deletes a directory tree. A missing tree is not an error.
func (m *Mirror) RemoveAll(path string) error {
	if err := util.RemoveAll(m.fs, path); err != nil {
		return fmt.Errorf("localfs: remove tree %q: %w", path, err)
	}
	return nil
}

// Join builds a path in the backing filesystem's separator convention.
func (m *Mirror) Join(elem ...string) string {
	return m.fs.Join(elem...)
}
