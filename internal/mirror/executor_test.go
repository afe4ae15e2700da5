package mirror_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftpmirror/internal/localfs"
	"ftpmirror/internal/mirror"
	"ftpmirror/internal/progress"
)

// fakeRemote serves a canned directory tree. Keys are absolute remote
// paths; a path missing from dirs lists as not found.
type fakeRemote struct {
	dirs      map[string][]mirror.Entry
	files     map[string]string
	listErr   map[string]error
	retrErr   map[string]error
	partial   map[string]int
	listCalls []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		dirs:    make(map[string][]mirror.Entry),
		files:   make(map[string]string),
		listErr: make(map[string]error),
		retrErr: make(map[string]error),
		partial: make(map[string]int),
	}
}

func (f *fakeRemote) List(path string) ([]mirror.Entry, error) {
	f.listCalls = append(f.listCalls, path)
	if err, ok := f.listErr[path]; ok {
		return nil, err
	}
	entries, ok := f.dirs[path]
	if !ok {
		return nil, fmt.Errorf("fake: list %s: %w", path, mirror.ErrNotFound)
	}
	return entries, nil
}

func (f *fakeRemote) Retrieve(path string, w io.Writer) (int64, error) {
	if err, ok := f.retrErr[path]; ok {
		n := 0
		if cut, ok := f.partial[path]; ok {
			n, _ = w.Write([]byte(f.files[path][:cut]))
		}
		return int64(n), err
	}
	data, ok := f.files[path]
	if !ok {
		return 0, fmt.Errorf("fake: retrieve %s: %w", path, mirror.ErrNotFound)
	}
	n, err := w.Write([]byte(data))
	return int64(n), err
}

func rfile(name string, size int64) mirror.Entry {
	return mirror.Entry{Name: name, Kind: mirror.KindFile, Size: size}
}

func rfileAt(name string, size int64, mod time.Time) mirror.Entry {
	return mirror.Entry{Name: name, Kind: mirror.KindFile, Size: size, ModTime: mod}
}

func rdir(name string) mirror.Entry {
	return mirror.Entry{Name: name, Kind: mirror.KindDir}
}

func quiet() mirror.Option {
	return mirror.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunConvergesWorkedTree(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 100), rdir("sub")}
	remote.dirs["/sub"] = []mirror.Entry{rfile("c.txt", 50)}
	remote.files["/sub/c.txt"] = strings.Repeat("c", 50)

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/a.txt", []byte(strings.Repeat("a", 100)), 0o644))
	require.NoError(t, util.WriteFile(fs, "/b.txt", []byte("0123456789"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Downloaded)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, int64(50), res.Bytes)

	data, err := util.ReadFile(fs, "/sub/c.txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("c", 50), string(data))

	_, err = fs.Stat("/b.txt")
	assert.Error(t, err)

	data, err = util.ReadFile(fs, "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 100), string(data))
}

func TestRunIsIdempotent(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 3), rdir("sub")}
	remote.dirs["/sub"] = []mirror.Entry{rfile("c.txt", 2)}
	remote.files["/a.txt"] = "abc"
	remote.files["/sub/c.txt"] = "cd"

	fs := memfs.New()
	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())

	first, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Downloaded)

	second, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Downloaded)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, 0, second.Failed)
	assert.Equal(t, 2, second.Skipped)
}

func TestRunUpdatesChangedFile(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 5)}
	remote.files["/a.txt"] = "12345"

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/a.txt", []byte("old"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 0, res.Downloaded)
	assert.Equal(t, int64(5), res.Bytes)

	data, err := util.ReadFile(fs, "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))
}

func TestRunUpdatesWhenRemoteNewer(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfileAt("a.txt", 3, time.Now().Add(time.Hour))}
	remote.files["/a.txt"] = "new"

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/a.txt", []byte("old"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)

	data, err := util.ReadFile(fs, "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRunDeletesOrphanTree(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{}

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/old/deep/x.txt", []byte("x"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/old/y.txt", []byte("y"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 0, res.Failed)

	local := localfs.NewFromBilly(fs)
	entries, err := local.List("/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunConflictLeavesEntryUntouched(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("x", 5)}
	remote.files["/x"] = "12345"

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/x/child.txt", []byte("keep me"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	require.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "x", res.Failures[0].Path)
	assert.Equal(t, mirror.CodeConflict, res.Failures[0].Code)

	data, err := util.ReadFile(fs, "/x/child.txt")
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestRunIsolatesTransferFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 2), rfile("b.txt", 10), rfile("c.txt", 2)}
	remote.files["/a.txt"] = "aa"
	remote.files["/b.txt"] = "0123456789"
	remote.files["/c.txt"] = "cc"
	remote.retrErr["/b.txt"] = errors.New("426 connection closed; transfer aborted")
	remote.partial["/b.txt"] = 4

	fs := memfs.New()
	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Downloaded)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, "b.txt", res.Failures[0].Path)
	assert.Equal(t, mirror.CodeTransfer, res.Failures[0].Code)

	// The partial b.txt must not survive the failed transfer.
	_, err = fs.Stat("/b.txt")
	assert.Error(t, err)

	data, err := util.ReadFile(fs, "/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "cc", string(data))
}

func TestRunRemovesPartialOnShortTransfer(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("short.bin", 10)}
	remote.files["/short.bin"] = "abc"

	fs := memfs.New()
	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	require.Equal(t, 1, res.Failed)
	assert.Equal(t, mirror.CodeTransfer, res.Failures[0].Code)
	assert.Contains(t, res.Failures[0].Err.Error(), "short transfer")
	assert.Equal(t, int64(0), res.Bytes)

	_, err = fs.Stat("/short.bin")
	assert.Error(t, err)
}

func TestRunRecordsVanishedFile(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("gone.txt", 5), rfile("keep.txt", 4)}
	remote.files["/keep.txt"] = "keep"

	fs := memfs.New()
	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Downloaded)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, "gone.txt", res.Failures[0].Path)
	assert.Equal(t, mirror.CodeNotFound, res.Failures[0].Code)
}

func TestRunSkipsUnlistableSubtree(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rdir("sub"), rfile("z.txt", 1)}
	remote.files["/z.txt"] = "z"
	remote.listErr["/sub"] = errors.New("425 can't open data connection")

	fs := memfs.New()
	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Downloaded)
	require.Equal(t, 1, res.Failed)
	assert.Equal(t, "sub", res.Failures[0].Path)
	assert.Equal(t, mirror.CodeConnection, res.Failures[0].Code)
}

func TestRunFatalOnRemoteRootFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.listErr["/"] = errors.New("530 not logged in")

	exec := mirror.New(remote, localfs.NewFromBilly(memfs.New()), quiet())
	res, err := exec.Run(context.Background(), "/", "/")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote root")
	assert.Equal(t, 0, res.Downloaded)
	assert.Equal(t, 0, res.Failed)
}

func TestRunDryRunCollectsChanges(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 3), rfile("new.txt", 7), rdir("sub")}
	remote.dirs["/sub"] = []mirror.Entry{rfile("c.txt", 2)}
	remote.files["/new.txt"] = "new new"
	remote.files["/sub/c.txt"] = "cc"

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/a.txt", []byte("abc"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/b.txt", []byte("0123456789"), 0o644))

	exec := mirror.New(remote, localfs.NewFromBilly(fs), quiet(), mirror.WithDryRun())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	want := []mirror.Change{
		{Action: mirror.ActionDownload, Path: "new.txt", Size: 7, Reason: "new file"},
		{Action: mirror.ActionCreateDir, Path: "sub", Reason: "new directory"},
		{Action: mirror.ActionDeleteFile, Path: "b.txt", Size: 10, Reason: "no longer on remote"},
		{Action: mirror.ActionDownload, Path: "sub/c.txt", Size: 2, Reason: "new file"},
	}
	assert.Equal(t, want, res.Changes)
	assert.Equal(t, 1, res.Skipped)

	// Nothing may have been executed.
	assert.Equal(t, 0, res.Downloaded)
	assert.Equal(t, 0, res.Deleted)

	_, err = fs.Stat("/b.txt")
	assert.NoError(t, err)
	_, err = fs.Stat("/new.txt")
	assert.Error(t, err)
	_, err = fs.Stat("/sub")
	assert.Error(t, err)
}

func TestRunCanceledContext(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("a.txt", 3)}
	remote.files["/a.txt"] = "abc"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := mirror.New(remote, localfs.NewFromBilly(memfs.New()), quiet())
	res, err := exec.Run(ctx, "/", "/")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Downloaded)
}

type recordingReporter struct {
	started   []string
	completed []string
	failed    []string
	updates   map[string][]int64
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{updates: make(map[string][]int64)}
}

func (r *recordingReporter) FileStarted(path string, size int64) progress.Tracker {
	r.started = append(r.started, path)
	return &recordingTracker{r: r, path: path}
}

type recordingTracker struct {
	r    *recordingReporter
	path string
}

func (t *recordingTracker) Update(done, total int64) {
	t.r.updates[t.path] = append(t.r.updates[t.path], done)
}

func (t *recordingTracker) Complete()   { t.r.completed = append(t.r.completed, t.path) }
func (t *recordingTracker) Error(error) { t.r.failed = append(t.r.failed, t.path) }

func TestRunReportsProgress(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rfile("data.bin", 4), rfile("fail.bin", 9)}
	remote.files["/data.bin"] = "data"
	remote.retrErr["/fail.bin"] = errors.New("426 transfer aborted")

	reporter := newRecordingReporter()

	exec := mirror.New(remote, localfs.NewFromBilly(memfs.New()), quiet(),
		mirror.WithReporter(reporter))
	_, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	assert.Equal(t, []string{"data.bin", "fail.bin"}, reporter.started)
	assert.Equal(t, []string{"data.bin"}, reporter.completed)
	assert.Equal(t, []string{"fail.bin"}, reporter.failed)
	assert.Equal(t, []int64{4}, reporter.updates["data.bin"])
}

// failingLocal injects MkdirAll failures into an otherwise working mirror.
type failingLocal struct {
	mirror.Local
	mkdirErr map[string]error
}

func (f *failingLocal) MkdirAll(path string) error {
	if err, ok := f.mkdirErr[path]; ok {
		return err
	}
	return f.Local.MkdirAll(path)
}

func TestRunSuppressesDescendAfterCreateDirFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{rdir("sub")}
	remote.dirs["/sub"] = []mirror.Entry{rfile("c.txt", 2)}
	remote.files["/sub/c.txt"] = "cc"

	fs := memfs.New()
	local := &failingLocal{
		Local:    localfs.NewFromBilly(fs),
		mkdirErr: map[string]error{"/sub": errors.New("permission denied")},
	}

	exec := mirror.New(remote, local, quiet())
	res, err := exec.Run(context.Background(), "/", "/")
	require.NoError(t, err)

	require.Equal(t, 1, res.Failed)
	assert.Equal(t, "sub", res.Failures[0].Path)
	assert.Equal(t, mirror.CodeFilesystem, res.Failures[0].Code)

	// The directory never existed, so its listing must not be attempted.
	assert.Equal(t, []string{"/"}, remote.listCalls)
}

func TestRunEmptyBothSides(t *testing.T) {
	remote := newFakeRemote()
	remote.dirs["/"] = []mirror.Entry{}

	exec := mirror.New(remote, localfs.NewFromBilly(memfs.New()), quiet())
	res, err := exec.Run(context.Background(), "/", "/")

	require.NoError(t, err)
	assert.Equal(t, 0, res.Downloaded+res.Updated+res.Deleted+res.Failed+res.Skipped)
}
