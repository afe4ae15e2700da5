package utils

import (
	"fmt"
	"ftpmirror/internal/mirror"
	"io"
	"text/tabwriter"
)

// RenderChanges prints a planned change list as an aligned table, one row
// per operation, in execution order.
func RenderChanges(w io.Writer, changes []mirror.Change) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ACTION\tPATH\tSIZE\tREASON")
	fmt.Fprintln(tw, "------\t----\t----\t------")

	for _, change := range changes {
		size := ""
		switch change.Action {
		case mirror.ActionDownload, mirror.ActionUpdate, mirror.ActionDeleteFile:
			size = FormatBytes(change.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", change.Action, change.Path, size, change.Reason)
	}

	tw.Flush()
}
