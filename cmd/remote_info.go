package cmd

import (
	"context"
	"ftpmirror/internal/ftpclient"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"time"
)

var remoteInfoCmd = &cobra.Command{
	Use:   "remote-info",
	Short: "Get statistics about the remote directory tree",
	Long: `Connect to the FTP server and walk the remote directory tree, reporting
file and directory counts, total size and the newest modification time.
The remote directory is taken from the configuration unless overridden
with the --remote flag.`,
	Example: `  # Stats for the configured remote directory
  ftpmirror remote-info

  # Stats for a subtree
  ftpmirror remote-info --remote /pub/archive

  # Verbose output
  ftpmirror remote-info --verbose`,
	Run: func(cmd *cobra.Command, args []string) {
		runRemoteInfo(cmd, args)
	},
}

func runRemoteInfo(cmd *cobra.Command, args []string) {
	remoteDir := getRemoteDir(cmd)

	cfg.Debug = isVerbose(cmd)

	client, err := ftpclient.Connect(cfg)
	if err != nil {
		utils.PrintError(err, "remote-info")
		return
	}
	defer client.Close()

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Walking remote tree at: %s\n", remoteDir)
	}

	info, err := client.TreeStats(ctx, remoteDir)
	if err != nil {
		utils.PrintError(err, "remote-info")
		return
	}

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "remote-info")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Remote info retrieved successfully\n")
	}
}

func init() {
	remoteInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
