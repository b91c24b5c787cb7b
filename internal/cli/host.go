package cli

import (
	"fmt"
	"image"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"glimpse/internal/capture"
	"glimpse/internal/cli/ui"
	"glimpse/internal/host"
	"glimpse/internal/host/stream"
	"glimpse/internal/input"
	"glimpse/internal/shared/logging"
	"glimpse/internal/shared/netutil"
	"glimpse/internal/shared/tuning"
	"glimpse/internal/tunnel"
	"glimpse/pkg/config"
)

var (
	hostPort         int
	hostBind         string
	hostQuality      int
	hostFPS          int
	hostDisplay      int
	hostTunnel       bool
	hostAgentURL     string
	hostMetricsPort  int
	hostListDisplays bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Share this screen",
	Long: `Share this machine's screen and accept remote control.

Viewers connect to the video port; remote-control commands arrive on
the next port up. With --tunnel both ports are published through the
local tunnel agent so viewers outside the network can connect.`,
	RunE: runHost,
}

func init() {
	hostCmd.Flags().IntVarP(&hostPort, "port", "p", 0, "Video port (command channel uses port+1)")
	hostCmd.Flags().StringVarP(&hostBind, "bind", "b", "", "Interface to listen on (default all)")
	hostCmd.Flags().IntVarP(&hostQuality, "quality", "q", 0, "JPEG quality 0-100")
	hostCmd.Flags().IntVar(&hostFPS, "fps", 0, "Frame rate ceiling")
	hostCmd.Flags().IntVarP(&hostDisplay, "display", "d", 0, "Display index to capture")
	hostCmd.Flags().BoolVar(&hostTunnel, "tunnel", false, "Publish both ports through the tunnel agent")
	hostCmd.Flags().StringVar(&hostAgentURL, "agent-url", "", "Tunnel agent API address")
	hostCmd.Flags().IntVar(&hostMetricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port")
	hostCmd.Flags().BoolVar(&hostListDisplays, "list-displays", false, "List capturable displays and exit")

	rootCmd.AddCommand(hostCmd)
}

// hostConfig merges the config file with explicitly set flags.
func hostConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if config.Exists(configPath) {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = hostPort
	}
	if flags.Changed("bind") {
		cfg.BindHost = hostBind
	}
	if flags.Changed("quality") {
		cfg.Quality = hostQuality
	}
	if flags.Changed("fps") {
		cfg.FPSLimit = hostFPS
	}
	if flags.Changed("display") {
		cfg.Display = hostDisplay
	}
	if flags.Changed("tunnel") {
		cfg.Tunnel = hostTunnel
	}
	if flags.Changed("agent-url") {
		cfg.AgentURL = hostAgentURL
	}
	if flags.Changed("metrics-port") {
		cfg.MetricsPort = hostMetricsPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runHost(cmd *cobra.Command, args []string) error {
	if hostListDisplays {
		return listDisplays()
	}

	cfg, err := hostConfig(cmd)
	if err != nil {
		return err
	}

	if err := logging.Init(verbose || cfg.Debug); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Sync()
	logger := logging.L()

	tuning.ApplyMode(tuning.ModeHost)

	src := capture.NewSource(logger)
	if err := src.SelectTarget(cfg.Display); err != nil {
		return fmt.Errorf("cannot capture display %d: %w", cfg.Display, err)
	}

	var tunnels *tunnel.Manager
	if cfg.Tunnel {
		tunnels = tunnel.NewManager(tunnel.NewAgentProvider(cfg.AgentURL), logger)
	}

	h := host.New(
		stream.SourceFunc(func() (image.Image, error) { return src.Capture(nil) }),
		input.NewRobot(logger),
		tunnels,
		host.Options{
			BindHost: cfg.BindHost,
			Port:     cfg.Port,
			Quality:  cfg.Quality,
			FPSLimit: cfg.FPSLimit,
			Tunnel:   cfg.Tunnel,
		},
		logger,
	)

	if err := h.Start(); err != nil {
		fmt.Println(ui.Error(err.Error()))
		return err
	}
	defer h.Stop()

	if cfg.MetricsPort > 0 {
		go serveMetrics(cfg.MetricsPort, logger)
	}

	status := &ui.SessionStatus{
		LocalIP:     netutil.LocalIP(),
		VideoPort:   cfg.Port,
		CommandPort: cfg.Port + 1,
		VideoURL:    h.PublicVideoURL(),
		CommandURL:  h.PublicCommandURL(),
		Quality:     cfg.Quality,
		FPSLimit:    cfg.FPSLimit,
	}
	fmt.Print(ui.RenderSessionStarted(status))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	lastRenderedLines := 0
	for {
		select {
		case <-ticker.C:
			st := h.Stats()
			st.UpdateSpeed()
			status.Viewers = st.Viewers()
			status.FramesSent = st.FramesSent()
			status.BytesOut = st.BytesOut()
			status.SpeedOut = float64(st.SpeedOut())
			status.Uptime = st.Uptime()

			statsView := ui.RenderSessionStats(status)
			if lastRenderedLines > 0 {
				fmt.Print(clearLines(lastRenderedLines))
			}
			fmt.Print(statsView)
			lastRenderedLines = countRenderedLines(statsView)

		case <-quit:
			fmt.Println()
			fmt.Println(ui.RenderShuttingDown())
			h.Stop()
			fmt.Println(ui.Success("Session closed"))
			return nil
		}
	}
}

func listDisplays() error {
	targets := capture.ListTargets()
	if len(targets) == 0 {
		fmt.Println(ui.Warning("No displays detected"))
		return nil
	}
	lines := make([]string, 0, len(targets))
	for _, t := range targets {
		lines = append(lines, ui.KeyValue(
			fmt.Sprintf("Display %d", t.Index),
			fmt.Sprintf("%dx%d", t.Width(), t.Height()),
		))
	}
	fmt.Println(ui.Info("Displays", lines...))
	return nil
}

func serveMetrics(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := net.JoinHostPort("", strconv.Itoa(port))
	logger.Info("Serving metrics", zap.String("addr", addr+"/metrics"))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("Metrics server stopped", zap.Error(err))
	}
}

func clearLines(lines int) string {
	if lines <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dA\033[J", lines)
}

func countRenderedLines(block string) int {
	if block == "" {
		return 0
	}
	lines := strings.Count(block, "\n")
	if !strings.HasSuffix(block, "\n") {
		lines++
	}
	return lines
}
