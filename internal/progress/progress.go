// Package progress carries per-file transfer progress from the mirror
// engine to whoever wants to show it. The engine only talks to the
// Reporter and Tracker interfaces; the console renderer and the no-op
// implementation live here as well.
package progress

import (
	"fmt"
	"io"
	"os"
)

// Tracker receives the progress of a single file transfer. Exactly one of
// Complete or Error ends the transfer.
type Tracker interface {
	Update(bytesDone, bytesTotal int64)
	Complete()
	Error(err error)
}

// Reporter hands out a Tracker as each file transfer begins. Path is the
// file's location relative to the mirror root, size the remote-reported
// byte count.
type Reporter interface {
	FileStarted(path string, size int64) Tracker
}

// Nop discards all progress events.
type Nop struct{}

func (Nop) FileStarted(string, int64) Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Update(int64, int64) {}
func (nopTracker) Complete()           {}
func (nopTracker) Error(error)         {}

// Console prints one line per transfer, rewritten in place while the
// transfer runs. Files are numbered in the order they start.
type Console struct {
	Out   io.Writer
	count int
}

func NewConsole() *Console {
	return &Console{Out: os.Stdout}
}

func (c *Console) FileStarted(path string, size int64) Tracker {
	c.count++
	return &consoleTracker{out: c.Out, index: c.count, path: path, size: size}
}

type consoleTracker struct {
	out   io.Writer
	index int
	path  string
	size  int64
}

func (t *consoleTracker) Update(bytesDone, bytesTotal int64) {
	if bytesTotal <= 0 {
		fmt.Fprintf(t.out, "\r[%d] %s: %d bytes", t.index, t.path, bytesDone)
		return
	}
	pct := float64(bytesDone) / float64(bytesTotal) * 100
	if pct > 100 {
		pct = 100
	}
	fmt.Fprintf(t.out, "\r[%d] %s: %.2f%% complete", t.index, t.path, pct)
}

func (t *consoleTracker) Complete() {
	fmt.Fprintf(t.out, "\r[%d] %s: done\n", t.index, t.path)
}

func (t *consoleTracker) Error(err error) {
	fmt.Fprintf(t.out, "\r[%d] %s: failed: %v\n", t.index, t.path, err)
}
