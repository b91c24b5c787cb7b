package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"glimpse/internal/cli/ui"
	"glimpse/internal/diag"
	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/logging"
)

var (
	diagPort  int
	diagWatch bool
)

var diagCmd = &cobra.Command{
	Use:   "diag <host>",
	Short: "Diagnose connectivity to a host",
	Long: `Check whether a host is reachable and its glimpse ports are open.

Pings the host, probes the video and command ports, and prints
recommendations when something is blocked.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiag,
}

func init() {
	diagCmd.Flags().IntVarP(&diagPort, "port", "p", constants.DefaultVideoPort, "Video port to probe (command port is probed too)")
	diagCmd.Flags().BoolVarP(&diagWatch, "watch", "w", false, "Re-run the checks every 2 seconds")

	rootCmd.AddCommand(diagCmd)
}

func runDiag(cmd *cobra.Command, args []string) error {
	if err := logging.Init(verbose); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Sync()

	target := args[0]
	ports := []int{diagPort, diagPort + constants.CommandPortOffset}
	prober := diag.NewProber(logging.L())

	report := prober.Run(target, ports)
	fmt.Println(ui.RenderDiagReport(report))

	if !diagWatch {
		if !report.Ping.Success || report.FirewallSuspected {
			os.Exit(1)
		}
		return nil
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report := prober.Run(target, ports)
			fmt.Println(ui.RenderDiagReport(report))
		case <-quit:
			fmt.Println(ui.RenderShuttingDown())
			return nil
		}
	}
}
