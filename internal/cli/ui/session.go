package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	sessionCardWidth = 76
	statsColumnWidth = 32
)

// SessionStatus carries everything the host screen shows about a running
// session.
type SessionStatus struct {
	LocalIP     string
	VideoPort   int
	CommandPort int
	VideoURL    string // public tunnel URL, empty when not tunneled
	CommandURL  string
	Quality     int
	FPSLimit    int

	Viewers    int64
	FramesSent int64
	BytesOut   int64
	SpeedOut   float64
	Uptime     time.Duration
}

// RenderSessionStarted renders the session card shown once the host is up.
func RenderSessionStarted(status *SessionStatus) string {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(successColor).
		Padding(1, 2).
		Width(sessionCardWidth)

	headline := lipgloss.JoinHorizontal(
		lipgloss.Left,
		lipgloss.NewStyle().Foreground(successColor).Render("◉"),
		lipgloss.NewStyle().Bold(true).MarginLeft(1).Render("Screen Sharing Active"),
	)

	lines := []string{
		headline,
		"",
		KeyValue("Address", fmt.Sprintf("%s:%d", status.LocalIP, status.VideoPort)),
		KeyValue("Commands", fmt.Sprintf("%s:%d", status.LocalIP, status.CommandPort)),
	}

	if status.VideoURL != "" {
		lines = append(lines,
			KeyValue("Public video", urlStyle.Render(status.VideoURL)),
		)
	}
	if status.CommandURL != "" {
		lines = append(lines,
			KeyValue("Public cmds", urlStyle.Render(status.CommandURL)),
		)
	}

	lines = append(lines,
		KeyValue("Quality", fmt.Sprintf("%d", status.Quality)),
		KeyValue("FPS limit", fmt.Sprintf("%d", status.FPSLimit)),
		"",
		lipgloss.NewStyle().Foreground(warningColor).Render("Ctrl+C to stop sharing"),
	)

	return "\n" + card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}

// RenderSessionStats renders the live counters card.
func RenderSessionStats(status *SessionStatus) string {
	header := lipgloss.JoinHorizontal(
		lipgloss.Left,
		lipgloss.NewStyle().Foreground(successColor).Render("◉"),
		lipgloss.NewStyle().Bold(true).MarginLeft(1).Render("Live Session"),
	)

	row1 := lipgloss.JoinHorizontal(
		lipgloss.Top,
		statColumn("Viewers", highlightStyle.Render(fmt.Sprintf("%d", status.Viewers)), statsColumnWidth),
		statColumn("Frames", highlightStyle.Render(fmt.Sprintf("%d", status.FramesSent)), statsColumnWidth),
	)
	row2 := lipgloss.JoinHorizontal(
		lipgloss.Top,
		statColumn("Traffic", Cyan("↑ "+formatBytes(status.BytesOut)), statsColumnWidth),
		statColumn("Speed", warningStyle.Render("↑ "+formatSpeed(status.SpeedOut)), statsColumnWidth),
	)
	row3 := statColumn("Uptime", Muted(formatDuration(status.Uptime)), statsColumnWidth)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(successColor).
		Padding(1, 2).
		Width(sessionCardWidth)

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", row1, row2, row3)
	return "\n" + card.Render(body) + "\n"
}

// RenderShuttingDown renders shutdown message
func RenderShuttingDown() string {
	return Warning("⏹  Shutting down...")
}

// RenderConnecting renders the viewer connecting message
func RenderConnecting(addr string) string {
	return Highlight("◌") + " Connecting to " + Muted(addr) + "..."
}

// RenderStreamEnded renders the end-of-stream message
func RenderStreamEnded() string {
	return Warning("⚠  Stream ended")
}

func statColumn(label, value string, width int) string {
	labelView := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render(strings.ToUpper(label))

	block := lipgloss.JoinHorizontal(
		lipgloss.Left,
		labelView,
		lipgloss.NewStyle().MarginLeft(1).Render(value),
	)

	if width <= 0 {
		return block
	}
	return lipgloss.NewStyle().Width(width).Render(block)
}

// formatBytes formats bytes to human readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatSpeed formats speed to human readable format
func formatSpeed(bytesPerSec float64) string {
	const unit = 1024.0
	if bytesPerSec < unit {
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
	div, exp := unit, 0
	for n := bytesPerSec / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB/s", bytesPerSec/div, "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
