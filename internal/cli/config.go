package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"glimpse/internal/cli/ui"
	"glimpse/pkg/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "Manage the Glimpse configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long:  "Create the configuration file with default settings",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current Glimpse configuration",
	RunE:  runConfigShow,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration",
	Long:  "Delete the configuration file",
	RunE:  runConfigReset,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configResetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configResetCmd.Flags().BoolVar(&configForce, "force", false, "Delete without confirmation")

	rootCmd.AddCommand(configCmd)
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if config.Exists(path) && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Println(ui.Success("Configuration written to " + path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := configFile()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	tunnelStr := "disabled"
	if cfg.Tunnel {
		tunnelStr = "enabled"
	}
	metricsStr := "disabled"
	if cfg.MetricsPort > 0 {
		metricsStr = fmt.Sprintf("port %d", cfg.MetricsPort)
	}

	fmt.Println(ui.Info(
		"Glimpse Configuration",
		"",
		ui.KeyValue("File", path),
		ui.KeyValue("Port", fmt.Sprintf("%d", cfg.Port)),
		ui.KeyValue("Quality", fmt.Sprintf("%d", cfg.Quality)),
		ui.KeyValue("FPS limit", fmt.Sprintf("%d", cfg.FPSLimit)),
		ui.KeyValue("Display", fmt.Sprintf("%d", cfg.Display)),
		ui.KeyValue("Tunnel", tunnelStr),
		ui.KeyValue("Agent URL", cfg.AgentURL),
		ui.KeyValue("Metrics", metricsStr),
		ui.KeyValue("Debug", fmt.Sprintf("%v", cfg.Debug)),
	))
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	path := configFile()
	if !config.Exists(path) {
		fmt.Println(ui.Muted("No config file at " + path))
		return nil
	}
	if !configForce {
		return fmt.Errorf("refusing to delete %s without --force", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	fmt.Println(ui.Success("Configuration deleted"))
	return nil
}
