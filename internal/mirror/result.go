package mirror

import "time"

// FailureCode classifies a recorded failure.
type FailureCode string

const (
	CodeConnection FailureCode = "connection"
	CodeNotFound   FailureCode = "not_found"
	CodeFilesystem FailureCode = "filesystem"
	CodeTransfer   FailureCode = "transfer"
	CodeConflict   FailureCode = "kind_conflict"
)

// Failure records one entry that could not be brought in sync during a
// pass. Path is relative to the mirror roots.
type Failure struct {
	Path string
	Code FailureCode
	Err  error
}

// Change is one planned operation, collected instead of executed during
// dry runs.
type Change struct {
	Action ActionType
	Path   string
	Size   int64
	Reason string
}

// Result aggregates one mirror pass. The counters describe what actually
// happened: a dry run leaves them at zero (except Skipped) and fills
// Changes instead. A recursive directory delete counts as one delete.
type Result struct {
	Downloaded int
	Updated    int
	Deleted    int
	Skipped    int
	Failed     int
	Bytes      int64
	Duration   time.Duration
	Failures   []Failure
	Changes    []Change
}

func (r *Result) fail(path string, code FailureCode, err error) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{Path: path, Code: code, Err: err})
}
