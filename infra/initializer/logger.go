package initializer

import (
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var levelStyles = []struct {
	level log.Level
	mark  string
	color lipgloss.AdaptiveColor
}{
	{log.DebugLevel, "DBG", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#9575CD"}},
	{log.InfoLevel, "INF", lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}},
	{log.WarnLevel, "WRN", lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}},
	{log.ErrorLevel, "ERR", lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}},
}

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
	"text":   log.TextFormatter,
}

// NewLogger builds the slog logger used by every component, rendering
// through charmbracelet/log. A nil writer means stdout.
func NewLogger(cfg *config.Log, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text"}
	}
	if w == nil {
		w = os.Stdout
	}

	styles := log.DefaultStyles()
	accent := lipgloss.AdaptiveColor{Light: "#5B6B7F", Dark: "#8FA3B8"}
	for _, ls := range levelStyles {
		styles.Levels[ls.level] = lipgloss.NewStyle().
			SetString(ls.mark).
			Bold(true).
			Padding(0, 1).
			Foreground(ls.color)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(levelStyles[3].color)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	for _, key := range []string{"component", "kind", "request_id", "transaction_id"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(accent)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}

	formatter, ok := formatters[cfg.Format]
	if !ok {
		formatter = log.TextFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Level <= int(log.DebugLevel),
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(styles)

	return slog.New(handler)
}

// setupLogger builds the logger and installs it as the slog default.
func setupLogger(cfg *config.Log) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}
