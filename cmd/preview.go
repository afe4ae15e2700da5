package cmd

import (
	"context"
	"fmt"
	"ftpmirror/internal/ftpclient"
	"ftpmirror/internal/localfs"
	"ftpmirror/internal/mirror"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"os"
	"slices"
	"strings"
	"time"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the planned changes as a table, then optionally apply them",
	Long: `Walk the remote and local trees, compute the full change plan and print it
as a table without touching any local file.

After the table you are asked whether to apply the plan; answering yes runs
a real mirror pass over the same directories.`,
	Example: `  # Preview the configured mirror
  ftpmirror preview

  # Preview a subtree and apply without being asked
  ftpmirror preview --remote /pub/daily --yes

  # Preview with size-only change detection
  ftpmirror preview --compare size`,
	Run: func(cmd *cobra.Command, args []string) {
		runPreview(cmd, args)
	},
}

func runPreview(cmd *cobra.Command, args []string) {
	remoteDir := getRemoteDir(cmd)
	localDir := getLocalDir(cmd)
	yes, _ := cmd.Flags().GetBool("yes")

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	cfg.Debug = isVerbose(cmd)

	client, err := ftpclient.Connect(cfg)
	if err != nil {
		utils.PrintError(err, "preview")
		return
	}
	defer client.Close()

	exec := mirror.New(client, localfs.New(localDir),
		mirror.WithComparator(comparatorFor(cmd)),
		mirror.WithDryRun(),
	)

	res, err := exec.Run(ctx, remoteDir, "/")
	if err != nil {
		utils.PrintError(err, "preview")
		return
	}

	if len(res.Changes) == 0 {
		fmt.Printf("Local mirror is up to date: %d files unchanged.\n", res.Skipped)
		return
	}

	utils.RenderChanges(os.Stdout, res.Changes)
	fmt.Printf("\n%d planned changes, %d files unchanged.\n", len(res.Changes), res.Skipped)

	if !yes {
		fmt.Print("Apply these changes? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "preview")
			return
		}
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Plan left unapplied.")
			return
		}
	}

	result, err := runPass(ctx, cmd, remoteDir, localDir, false)
	if err != nil {
		utils.PrintError(err, "preview")
		return
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "preview")
		return
	}
}

func init() {
	previewCmd.Flags().Bool("yes", false, "Apply the plan without asking")
	previewCmd.Flags().String("compare", "", "Change detection rule: auto (size and time) or size")
	previewCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
