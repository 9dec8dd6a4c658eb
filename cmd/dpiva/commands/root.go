package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-dpiva/internal/config"
)

// ErrSubmissionsFailed is returned when at least one declaration failed
var ErrSubmissionsFailed = errors.New("one or more submissions failed")

var configPath string

// Execute runs the dpiva command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dpiva",
		Short:         "Submit periodic VAT declarations to the tax authority web service",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "configuration file")

	root.AddCommand(submitCmd(), inspectCmd(), resultsCmd())
	return root
}

func defaultConfigPath() string {
	if p := os.Getenv("DPIVA_CONFIG"); p != "" {
		return p
	}
	return "dpiva.yaml"
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
