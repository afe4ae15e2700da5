package cmd

import (
	"fmt"
	"ftpmirror/config"
	"ftpmirror/pkg/utils"
	"github.com/spf13/cobra"
	"os"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write ftpmirror.json with placeholder values into the current directory.
Fill in the host, credentials and directories afterwards, or set the
matching FTPMIRROR_* environment variables instead.`,
	Example: `  # Create ftpmirror.json here
  ftpmirror init

  # Overwrite an existing config
  ftpmirror init --force`,
	Run: func(cmd *cobra.Command, args []string) {
		runInit(cmd, args)
	},
}

func runInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(config.FileName); err == nil && !force {
		utils.PrintError(fmt.Errorf("%s already exists, use --force to overwrite", config.FileName), "init")
		return
	}

	if err := os.WriteFile(config.FileName, []byte(config.Template), 0o644); err != nil {
		utils.PrintError(fmt.Errorf("failed to write config template: %w", err), "init")
		return
	}

	fmt.Printf("Wrote %s. Fill in the connection settings before running sync.\n", config.FileName)
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
