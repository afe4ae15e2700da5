package models

type MirrorFailure struct {
	Path  string `json:"path"`
	Code  string `json:"code"`
	Cause string `json:"cause"`
}

type MirrorResult struct {
	Host           string          `json:"host"`
	RemoteDir      string          `json:"remote_dir"`
	LocalDir       string          `json:"local_dir"`
	Pass           int             `json:"pass,omitempty"`
	Downloaded     int             `json:"downloaded"`
	Updated        int             `json:"updated"`
	Deleted        int             `json:"deleted"`
	Skipped        int             `json:"skipped"`
	Failed         int             `json:"failed"`
	Failures       []MirrorFailure `json:"failures,omitempty"`
	TotalSizeBytes int64           `json:"total_size_bytes"`
	TotalSizeHuman string          `json:"total_size_human"`
	OperationTime  string          `json:"operation_time"`
	SyncDuration   string          `json:"sync_duration"`
	DryRun         bool            `json:"dry_run,omitempty"`
	PlannedChanges int             `json:"planned_changes,omitempty"`
}
