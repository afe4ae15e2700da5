package cmd

import (
	"context"
	"fmt"
	"ftpmirror/internal/ftpclient"
	"ftpmirror/internal/localfs"
	"ftpmirror/internal/mirror"
	"ftpmirror/internal/models"
	"ftpmirror/internal/progress"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"os"
	"slices"
	"strings"
	"time"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the remote directory tree into the local directory",
	Long: `Run one mirror pass: compare the remote FTP directory tree against the
local directory and converge the local copy to the remote one.

The pass downloads files that are new or changed on the remote side, removes
local files and directories the remote no longer has, and records every entry
that could not be brought in sync. A failure on one file never aborts the
rest of the pass.

Entries that are a file on one side and a directory on the other are reported
as conflicts and left untouched.`,
	Example: `  # Mirror using the configured directories
  ftpmirror sync

  # Mirror a different remote subtree
  ftpmirror sync --remote /pub/archive --local ./archive

  # See what would change without touching anything
  ftpmirror sync --dry-run

  # Compare by size only, ignoring timestamps
  ftpmirror sync --compare size

  # Verbose pass without the confirmation prompt
  ftpmirror sync --confirm --verbose`,
	Run: func(cmd *cobra.Command, args []string) {
		runSync(cmd, args)
	},
}

func runSync(cmd *cobra.Command, args []string) {
	remoteDir := getRemoteDir(cmd)
	localDir := getLocalDir(cmd)
	confirm, _ := cmd.Flags().GetBool("confirm")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Show operation summary if not in confirm mode
	if !confirm && !dryRun {
		fmt.Printf("Sync operation summary:\n")
		fmt.Printf("Host: %s\n", cfg.Host)
		fmt.Printf("Remote directory: %s\n", remoteDir)
		fmt.Printf("Local directory: %s\n", localDir)

		fmt.Print("Continue with sync? (y/N): ")
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			utils.PrintError(err, "sync")
			return
		}
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Sync cancelled.")
			return
		}
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Starting mirror pass...\n")
		cmd.Printf("  Remote: %s\n", remoteDir)
		cmd.Printf("  Local: %s\n", localDir)
		if dryRun {
			cmd.Println("  Dry run: no local files will be touched")
		}
	}

	result, err := runPass(ctx, cmd, remoteDir, localDir, dryRun)
	if err != nil {
		utils.PrintError(err, "sync")
		return
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "sync")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Mirror pass completed")
	}
}

// runPass opens a fresh FTP session, runs one mirror pass and converts the
// outcome for printing. Shared by sync, preview and watch.
func runPass(ctx context.Context, cmd *cobra.Command, remoteDir, localDir string, dryRun bool) (*models.MirrorResult, error) {
	cfg.Debug = isVerbose(cmd)

	if !dryRun {
		if err := os.MkdirAll(localDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local directory: %w", err)
		}
	}

	client, err := ftpclient.Connect(cfg)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	opts := []mirror.Option{
		mirror.WithComparator(comparatorFor(cmd)),
	}
	if dryRun {
		opts = append(opts, mirror.WithDryRun())
	} else {
		opts = append(opts, mirror.WithReporter(progress.NewConsole()))
	}

	exec := mirror.New(client, localfs.New(localDir), opts...)

	res, err := exec.Run(ctx, remoteDir, "/")
	if err != nil {
		return nil, err
	}

	return newMirrorResult(remoteDir, localDir, dryRun, res), nil
}

// comparatorFor picks the change detection rule: the command's --compare
// flag if set, the configured value otherwise.
func comparatorFor(cmd *cobra.Command) mirror.Comparator {
	compare, _ := cmd.Flags().GetString("compare")
	if compare == "" {
		compare = cfg.Compare
	}
	if compare == "size" {
		return mirror.SizeOnlyComparator{}
	}
	return mirror.SizeTimeComparator{}
}

func newMirrorResult(remoteDir, localDir string, dryRun bool, res *mirror.Result) *models.MirrorResult {
	result := &models.MirrorResult{
		Host:           cfg.Host,
		RemoteDir:      remoteDir,
		LocalDir:       localDir,
		Downloaded:     res.Downloaded,
		Updated:        res.Updated,
		Deleted:        res.Deleted,
		Skipped:        res.Skipped,
		Failed:         res.Failed,
		TotalSizeBytes: res.Bytes,
		TotalSizeHuman: utils.FormatBytes(res.Bytes),
		OperationTime:  utils.FormatTime(time.Now()),
		SyncDuration:   utils.FormatDuration(res.Duration),
		DryRun:         dryRun,
		PlannedChanges: len(res.Changes),
	}

	for _, f := range res.Failures {
		result.Failures = append(result.Failures, models.MirrorFailure{
			Path:  f.Path,
			Code:  string(f.Code),
			Cause: f.Err.Error(),
		})
	}

	return result
}

func init() {
	syncCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	syncCmd.Flags().Bool("dry-run", false, "Plan the pass without touching local files")
	syncCmd.Flags().String("compare", "", "Change detection rule: auto (size and time) or size")
	syncCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")

	syncCmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`)
}
