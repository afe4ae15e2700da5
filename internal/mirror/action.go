package mirror

// ActionType enumerates the operations a plan can demand for one name.
type ActionType int

const (
	ActionCreateDir ActionType = iota
	ActionDescend
	ActionDownload
	ActionUpdate
	ActionDeleteFile
	ActionDeleteDir
	ActionConflict
)

func (t ActionType) String() string {
	switch t {
	case ActionCreateDir:
		return "create-dir"
	case ActionDescend:
		return "descend"
	case ActionDownload:
		return "download"
	case ActionUpdate:
		return "update"
	case ActionDeleteFile:
		return "delete-file"
	case ActionDeleteDir:
		return "delete-dir"
	case ActionConflict:
		return "conflict"
	}
	return "unknown"
}

// Action is one planned operation on a single name within one directory
// level. Size carries the remote-reported byte count for transfers and the
// local size for file deletions; Reason explains the decision in plan
// previews and failure records.
type Action struct {
	Type   ActionType
	Name   string
	Size   int64
	Reason string
}

// Plan is the ordered action list for one directory level plus the count
// of files that needed no action.
type Plan struct {
	Actions []Action
	Skipped int
}

func (p *Plan) add(actions ...Action) {
	p.Actions = append(p.Actions, actions...)
}
