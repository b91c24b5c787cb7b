package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"glimpse/internal/cli/ui"
)

var (
	// Version information
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"

	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "glimpse",
	Short: "Glimpse - Share and control your screen over plain TCP",
	Long: `Glimpse - Lightweight screen sharing with remote control

Stream your screen to viewers on your network or, via a tunnel,
anywhere on the internet. Viewers see a live feed and can drive
your mouse and keyboard.

Configuration:
  First time: Run 'glimpse config init' to write the default config
  Subsequent: Just run 'glimpse host' or 'glimpse view <address>'

Examples:
  glimpse host                       # Share on the default port
  glimpse host --tunnel              # Share through a public tunnel
  glimpse view 192.168.1.20          # Watch a host on the LAN
  glimpse view tcp://0.tcp.io:12345  # Watch through a tunnel
  glimpse diag 192.168.1.20          # Diagnose a connection problem`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default ~/.glimpse/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(versionCmd)
	// host, view, diag and config commands are added in their
	// respective init() functions
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.Info(
			"Glimpse",
			"",
			ui.KeyValue("Version", Version),
			ui.KeyValue("Git Commit", GitCommit),
			ui.KeyValue("Build Time", BuildTime),
		))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version information
func SetVersion(version, commit, buildTime string) {
	Version = version
	GitCommit = commit
	BuildTime = buildTime
}
