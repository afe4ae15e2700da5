package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"ftpmirror/internal/progress"
)

// Executor drives mirror passes over a remote session and a local mirror
// directory. It owns neither: the caller opens the session, runs one or
// more passes and closes it again.
//
// The tree is walked iteratively with an explicit work list, so depth is
// bounded by available memory rather than the goroutine stack, and one
// remote session suffices for the whole pass.
type Executor struct {
	remote   Remote
	local    Local
	planner  *Planner
	reporter progress.Reporter
	log      *slog.Logger
	dryRun   bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithComparator selects the changed-file rule.
func WithComparator(cmp Comparator) Option {
	return func(e *Executor) { e.planner = NewPlanner(cmp) }
}

// WithReporter routes per-file transfer progress to r.
func WithReporter(r progress.Reporter) Option {
	return func(e *Executor) { e.reporter = r }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithDryRun plans the whole tree without touching the local filesystem.
// Planned operations are collected on Result.Changes and a local directory
// that a real pass would have created is treated as empty.
func WithDryRun() Option {
	return func(e *Executor) { e.dryRun = true }
}

// New returns an executor mirroring remote into local.
func New(remote Remote, local Local, opts ...Option) *Executor {
	e := &Executor{
		remote:   remote,
		local:    local,
		planner:  NewPlanner(nil),
		reporter: progress.Nop{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// frame is one directory level waiting to be processed.
type frame struct {
	remotePath string
	localPath  string
	relPath    string
}

// Run executes one mirror pass from remoteRoot into localRoot. A failure
// on a single entry is recorded on the Result and never aborts the pass;
// an unreadable remote subtree is recorded and skipped whole. Only an
// unreadable root, on either side, is fatal. ctx is honored between
// actions: a running transfer finishes before cancellation takes effect.
func (e *Executor) Run(ctx context.Context, remoteRoot, localRoot string) (*Result, error) {
	started := time.Now()
	res := &Result{}
	defer func() { res.Duration = time.Since(started) }()

	stack := []frame{{remotePath: remoteRoot, localPath: localRoot, relPath: "."}}
	root := true

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := e.processLevel(ctx, f, res, root)
		if err != nil {
			return res, err
		}
		root = false

		// Push in reverse so children pop in plan order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return res, nil
}

// processLevel lists both sides of one directory, plans the level and
// applies the plan. A non-nil error stops the whole pass: it is either a
// fatal root failure or a canceled context. Everything else is recorded on
// res and swallowed.
func (e *Executor) processLevel(ctx context.Context, f frame, res *Result, root bool) ([]frame, error) {
	remoteEntries, err := e.remote.List(f.remotePath)
	if err != nil {
		if root {
			return nil, fmt.Errorf("failed to list remote root %s: %w", f.remotePath, err)
		}
		code := CodeConnection
		if errors.Is(err, ErrNotFound) {
			code = CodeNotFound
		}
		res.fail(f.relPath, code, fmt.Errorf("failed to list remote directory: %w", err))
		e.log.Warn("skipping unreadable remote directory", "path", f.relPath, "error", err)
		return nil, nil
	}

	localEntries, err := e.local.List(f.localPath)
	if err != nil {
		switch {
		case e.dryRun && errors.Is(err, ErrNotFound):
			// A real pass would have created this directory.
			localEntries = nil
		case root:
			return nil, fmt.Errorf("failed to list local root: %w", err)
		default:
			res.fail(f.relPath, CodeFilesystem, fmt.Errorf("failed to list local directory: %w", err))
			e.log.Warn("skipping unreadable local directory", "path", f.relPath, "error", err)
			return nil, nil
		}
	}

	plan := e.planner.Plan(NewSnapshot(remoteEntries), NewSnapshot(localEntries))
	res.Skipped += plan.Skipped

	var children []frame
	failedDirs := make(map[string]bool)

	for _, act := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return children, err
		}

		if e.dryRun {
			if act.Type == ActionDescend {
				children = append(children, e.childFrame(f, act.Name))
				continue
			}
			res.Changes = append(res.Changes, Change{
				Action: act.Type,
				Path:   path.Join(f.relPath, act.Name),
				Size:   act.Size,
				Reason: act.Reason,
			})
			continue
		}

		switch act.Type {
		case ActionCreateDir:
			e.applyCreateDir(f, act, res, failedDirs)
		case ActionDescend:
			if failedDirs[act.Name] {
				continue
			}
			children = append(children, e.childFrame(f, act.Name))
		case ActionDownload, ActionUpdate:
			e.applyTransfer(f, act, res)
		case ActionDeleteFile:
			e.applyDeleteFile(f, act, res)
		case ActionDeleteDir:
			e.applyDeleteDir(f, act, res)
		case ActionConflict:
			rel := path.Join(f.relPath, act.Name)
			res.fail(rel, CodeConflict, errors.New(act.Reason))
			e.log.Warn("conflict, leaving entry untouched", "path", rel, "reason", act.Reason)
		}
	}

	return children, nil
}

func (e *Executor) childFrame(f frame, name string) frame {
	return frame{
		remotePath: path.Join(f.remotePath, name),
		localPath:  e.local.Join(f.localPath, name),
		relPath:    path.Join(f.relPath, name),
	}
}

// applyCreateDir creates one directory. On failure the matching Descend is
// suppressed via failedDirs so the pass does not report a cascade of
// errors underneath a directory that never came to exist.
func (e *Executor) applyCreateDir(f frame, act Action, res *Result, failedDirs map[string]bool) {
	rel := path.Join(f.relPath, act.Name)
	if err := e.local.MkdirAll(e.local.Join(f.localPath, act.Name)); err != nil {
		res.fail(rel, CodeFilesystem, fmt.Errorf("failed to create directory: %w", err))
		failedDirs[act.Name] = true
		e.log.Warn("failed to create directory", "path", rel, "error", err)
		return
	}
	e.log.Debug("created directory", "path", rel)
}

func (e *Executor) applyTransfer(f frame, act Action, res *Result) {
	rel := path.Join(f.relPath, act.Name)

	tracker := e.reporter.FileStarted(rel, act.Size)

	n, code, err := e.download(path.Join(f.remotePath, act.Name), e.local.Join(f.localPath, act.Name), act.Size, tracker)
	if err != nil {
		tracker.Error(err)
		res.fail(rel, code, err)
		e.log.Warn("transfer failed", "path", rel, "error", err)
		return
	}

	tracker.Complete()
	res.Bytes += n
	if act.Type == ActionUpdate {
		res.Updated++
	} else {
		res.Downloaded++
	}
	e.log.Debug("transferred file", "path", rel, "bytes", n)
}

// download streams one remote file into the local path. Any failure
// removes the partial local file so a later pass sees a clean miss
// instead of a truncated copy.
func (e *Executor) download(remotePath, localPath string, size int64, tracker progress.Tracker) (int64, FailureCode, error) {
	w, err := e.local.Create(localPath)
	if err != nil {
		return 0, CodeFilesystem, fmt.Errorf("failed to create local file: %w", err)
	}

	pw := &progress.Writer{W: w, Callback: func(total int64) {
		tracker.Update(total, size)
	}}

	n, err := e.remote.Retrieve(remotePath, pw)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to finalize local file: %w", cerr)
	}
	if err == nil && n != size {
		err = fmt.Errorf("short transfer: wrote %d of %d bytes", n, size)
	}
	if err != nil {
		_ = e.local.Remove(localPath)
		code := CodeTransfer
		if errors.Is(err, ErrNotFound) {
			code = CodeNotFound
		}
		return 0, code, err
	}

	return n, CodeTransfer, nil
}

// applyDeleteFile removes one local file. A file that is already gone
// counts as deleted rather than failed.
func (e *Executor) applyDeleteFile(f frame, act Action, res *Result) {
	rel := path.Join(f.relPath, act.Name)
	if err := e.local.Remove(e.local.Join(f.localPath, act.Name)); err != nil && !errors.Is(err, ErrNotFound) {
		res.fail(rel, CodeFilesystem, fmt.Errorf("failed to delete file: %w", err))
		e.log.Warn("failed to delete file", "path", rel, "error", err)
		return
	}
	res.Deleted++
	e.log.Debug("deleted file", "path", rel)
}

func (e *Executor) applyDeleteDir(f frame, act Action, res *Result) {
	rel := path.Join(f.relPath, act.Name)
	if err := e.local.RemoveAll(e.local.Join(f.localPath, act.Name)); err != nil {
		res.fail(rel, CodeFilesystem, fmt.Errorf("failed to delete directory: %w", err))
		e.log.Warn("failed to delete directory", "path", rel, "error", err)
		return
	}
	res.Deleted++
	e.log.Debug("deleted directory", "path", rel)
}
