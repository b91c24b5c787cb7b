package cli

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"glimpse/internal/cli/ui"
	"glimpse/internal/shared/logging"
	"glimpse/internal/shared/tuning"
	"glimpse/internal/viewer"
)

var (
	viewCommandPort int
	viewSnapshot    string
)

var viewCmd = &cobra.Command{
	Use:   "view <address>",
	Short: "Watch a shared screen",
	Long: `Connect to a host and receive its screen stream.

The address may be a bare host, a host:port pair, or a tunnel URL.
When the host's two channels are tunneled to unrelated public ports,
pass the command channel port with --command-port.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().IntVar(&viewCommandPort, "command-port", 0, "Command channel port (default video port+1)")
	viewCmd.Flags().StringVar(&viewSnapshot, "snapshot", "", "Write the first received frame to this file and exit")

	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	if err := logging.Init(verbose); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Sync()
	logger := logging.L()

	tuning.ApplyMode(tuning.ModeViewer)

	var (
		frames    atomic.Int64
		firstOnce atomic.Bool
		firstCh   = make(chan image.Image, 1)
	)
	callback := func(img image.Image) {
		frames.Add(1)
		if firstOnce.CompareAndSwap(false, true) {
			firstCh <- img
		}
	}

	v := viewer.New(callback, logger)

	fmt.Println(ui.RenderConnecting(args[0]))
	if err := v.Connect(args[0], viewCommandPort); err != nil {
		fmt.Println(ui.Error(err.Error()))
		return err
	}
	defer v.Disconnect()

	if viewSnapshot != "" {
		return saveSnapshot(v, firstCh, viewSnapshot)
	}

	fmt.Println(ui.Success("Connected. Receiving frames..."))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Printf("\r%s", ui.Muted(fmt.Sprintf("frames received: %d", frames.Load())))
		case <-v.Done():
			fmt.Println()
			fmt.Println(ui.RenderStreamEnded())
			return nil
		case <-quit:
			fmt.Println()
			fmt.Println(ui.RenderShuttingDown())
			return nil
		}
	}
}

func saveSnapshot(v *viewer.Viewer, firstCh <-chan image.Image, path string) error {
	logger := logging.L()

	select {
	case img := <-firstCh:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create snapshot file: %w", err)
		}
		defer f.Close()
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		logger.Debug("Snapshot written", zap.String("path", path))
		fmt.Println(ui.Success("Snapshot saved to " + path))
		return nil
	case <-v.Done():
		return fmt.Errorf("stream ended before a frame arrived")
	case <-time.After(30 * time.Second):
		return fmt.Errorf("no frame arrived within 30s")
	}
}
