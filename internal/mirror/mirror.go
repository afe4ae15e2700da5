// Package mirror implements the synchronization engine. It compares remote
// FTP directory listings against a local directory tree and executes the
// downloads, updates and deletes that converge the local tree to the
// remote one. The engine is deliberately protocol-agnostic: it sees the
// remote through the Remote interface and the local disk through Local.
package mirror

import (
	"errors"
	"io"
)

// ErrNotFound marks listing, transfer or delete failures caused by a path
// that does not exist on the side that reported it. Adapters wrap their
// protocol-specific variant of this condition so the engine can classify
// failures without knowing the protocol.
var ErrNotFound = errors.New("not found")

// Remote is the read side of a mirror pass: one connected session, owned
// exclusively by the executor for the duration of the pass. Paths are
// slash-separated and absolute in the remote server's namespace.
type Remote interface {
	// List returns the entries of one remote directory.
	List(path string) ([]Entry, error)
	// Retrieve streams a remote file into w and returns the bytes written.
	Retrieve(path string, w io.Writer) (int64, error)
}

// Local is the write side: the mirror directory. Paths are relative to the
// mirror root ("/" is the root itself) and built with Join.
type Local interface {
	// List returns the entries of one directory. A missing directory
	// reports ErrNotFound so callers can tell absent from empty.
	List(path string) ([]Entry, error)
	MkdirAll(path string) error
	Create(path string) (io.WriteCloser, error)
	Remove(path string) error
	RemoveAll(path string) error
	Join(elem ...string) string
}
