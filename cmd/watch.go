package cmd

import (
	"context"
	"fmt"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Mirror repeatedly on a fixed interval",
	Long: `Run mirror passes in a loop, sleeping the configured interval between
passes, until interrupted with Ctrl-C or SIGTERM.

Each pass opens a fresh FTP session, so server-side idle limits between
passes do not matter. A failing pass is reported and the loop keeps going;
the next pass picks up whatever the failed one left behind.`,
	Example: `  # Mirror every 5 minutes (config default)
  ftpmirror watch

  # Mirror every 30 seconds
  ftpmirror watch --interval 30

  # Watch a subtree into a dedicated directory
  ftpmirror watch --remote /pub/daily --local ./daily`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatch(cmd, args)
	},
}

func runWatch(cmd *cobra.Command, args []string) {
	remoteDir := getRemoteDir(cmd)
	localDir := getLocalDir(cmd)

	interval, _ := cmd.Flags().GetInt("interval")
	if interval <= 0 {
		interval = cfg.Interval
	}

	timeout, _ := cmd.Flags().GetInt("timeout")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for pass := 1; ; pass++ {
		passCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		result, err := runPass(passCtx, cmd, remoteDir, localDir, false)
		cancel()

		if err != nil {
			utils.PrintError(err, "watch")
		} else {
			result.Pass = pass
			if err := utils.PrintJSON(result); err != nil {
				utils.PrintError(err, "watch")
			}
		}

		if isVerbose(cmd) {
			cmd.Printf("Next pass in %ds\n", interval)
		}

		select {
		case <-ctx.Done():
			fmt.Println("Watch stopped.")
			return
		case <-time.After(time.Duration(interval) * time.Second):
		}
	}
}

func init() {
	watchCmd.Flags().Int("interval", 0, "Seconds between passes (default: interval from config)")
	watchCmd.Flags().Int("timeout", 3600, "Timeout in seconds per pass (default: 1 hour)")
}
