package mirror

import (
	"fmt"
	"sort"
)

// Planner computes the actions that converge one local directory level to
// its remote counterpart. Planning is pure comparison over two snapshots:
// it performs no I/O and cannot fail, it can only emit conflicts.
type Planner struct {
	cmp Comparator
}

// NewPlanner returns a planner using cmp to detect changed files. A nil
// cmp selects SizeTimeComparator.
func NewPlanner(cmp Comparator) *Planner {
	if cmp == nil {
		cmp = SizeTimeComparator{}
	}
	return &Planner{cmp: cmp}
}

// Plan returns the actions for one level: creations, descents, downloads
// and updates first, deletions last, each group in name order. Files that
// are identical on both sides produce no action and are counted in
// Skipped. The same snapshots always produce the same plan.
func (p *Planner) Plan(remote, local Snapshot) *Plan {
	plan := &Plan{}

	for _, name := range sortedNames(remote) {
		re := remote[name]
		le, ok := local[name]

		switch {
		case !ok:
			plan.add(p.remoteOnly(re)...)
		case re.Kind == KindLink:
			plan.add(Action{Type: ActionConflict, Name: name, Reason: "remote symlink, not supported"})
		case le.Kind == KindLink:
			plan.add(Action{Type: ActionConflict, Name: name, Reason: "local symlink, not managed"})
		case re.Kind != le.Kind:
			plan.add(Action{
				Type:   ActionConflict,
				Name:   name,
				Reason: fmt.Sprintf("kind mismatch: %s remotely, %s locally", re.Kind, le.Kind),
			})
		case re.Kind == KindDir:
			plan.add(Action{Type: ActionDescend, Name: name})
		default:
			if changed, reason := p.cmp.Changed(re, le); changed {
				plan.add(Action{Type: ActionUpdate, Name: name, Size: re.Size, Reason: reason})
			} else {
				plan.Skipped++
			}
		}
	}

	for _, name := range sortedNames(local) {
		if _, ok := remote[name]; ok {
			continue
		}
		le := local[name]
		switch le.Kind {
		case KindDir:
			plan.add(Action{Type: ActionDeleteDir, Name: name, Reason: "no longer on remote"})
		case KindLink:
			plan.add(Action{Type: ActionConflict, Name: name, Reason: "local symlink, not managed"})
		default:
			plan.add(Action{Type: ActionDeleteFile, Name: name, Size: le.Size, Reason: "no longer on remote"})
		}
	}

	return plan
}

func (p *Planner) remoteOnly(re Entry) []Action {
	switch re.Kind {
	case KindDir:
		return []Action{
			{Type: ActionCreateDir, Name: re.Name, Reason: "new directory"},
			{Type: ActionDescend, Name: re.Name},
		}
	case KindLink:
		return []Action{{Type: ActionConflict, Name: re.Name, Reason: "remote symlink, not supported"}}
	default:
		return []Action{{Type: ActionDownload, Name: re.Name, Size: re.Size, Reason: "new file"}}
	}
}

func sortedNames(s Snapshot) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
