package cmd

import (
	"fmt"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"path/filepath"
	"slices"
	"strings"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Archive the local mirror into a zip file",
	Long: `Create a timestamped zip archive of the local mirror directory.

Useful for keeping dated snapshots of the replica before a risky sync, or
for shipping the mirror elsewhere. The archive name is derived from the
mirror directory name and the current time.`,
	Example: `  # Archive the configured mirror into the current directory
  ftpmirror snapshot

  # Archive into a dedicated directory
  ftpmirror snapshot --output /var/backups/mirrors

  # Archive a different local directory without the prompt
  ftpmirror snapshot --local ./daily --confirm`,
	Run: func(cmd *cobra.Command, args []string) {
		runSnapshot(cmd, args)
	},
}

func runSnapshot(cmd *cobra.Command, args []string) {
	localDir := getLocalDir(cmd)
	output, _ := cmd.Flags().GetString("output")
	confirm, _ := cmd.Flags().GetBool("confirm")

	// If output is empty, use current directory
	if output == "" {
		output = "."
	}

	if err := utils.ValidateLocalDir(localDir); err != nil {
		utils.PrintError(err, "snapshot")
		return
	}

	archivePath := filepath.Join(output, utils.GenerateArchiveName(localDir, ".zip"))

	// Show operation summary if not in confirm mode
	if !confirm {
		fmt.Printf("Snapshot operation summary:\n")
		fmt.Printf("Mirror directory: %s\n", localDir)
		fmt.Printf("Archive: %s\n", archivePath)

		fmt.Print("Continue with snapshot? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "snapshot")
			return
		}
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Snapshot cancelled.")
			return
		}
	}

	if isVerbose(cmd) {
		cmd.Printf("Archiving %s...\n", localDir)
	}

	info, err := utils.CreateMirrorArchive(localDir, archivePath)
	if err != nil {
		_ = utils.CleanupTempFile(archivePath)
		utils.PrintError(err, "snapshot")
		return
	}

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "snapshot")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Snapshot completed successfully")
	}
}

func init() {
	snapshotCmd.Flags().StringP("output", "o", "", "Directory for the archive (default: current directory)")
	snapshotCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
}
