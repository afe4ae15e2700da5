package cmd

import (
	"ftpmirror/config"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ftpmirror",
	Short: "FTP mirror tool for local replicas",
	Long: `ftpmirror keeps a local directory tree synchronized with a remote FTP one.
It downloads new and changed files, deletes local entries the remote no
longer has, and reports what every pass did.
Configuration is loaded from ftpmirror.json, .env file or environment variables`,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(remoteInfoCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.PersistentFlags().StringP("remote", "r", "", "Override remote directory from config")
	rootCmd.PersistentFlags().StringP("local", "l", "", "Override local directory from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getRemoteDir(cmd *cobra.Command) string {
	remote, _ := cmd.Flags().GetString("remote")
	if remote != "" {
		return remote
	}
	return cfg.RemoteDir
}

func getLocalDir(cmd *cobra.Command) string {
	local, _ := cmd.Flags().GetString("local")
	if local != "" {
		return local
	}
	return cfg.LocalDir
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}
