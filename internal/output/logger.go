/*
PURPOSE:
  Provides a structured logger for Prompt Tuner.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Server deployments want JSON logs; the CLI wants text.
  - Per-generation logs are debug level and only shown with --verbose.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured once by internal/cli before any command runs.

ERROR HANDLING:
  - Unknown formats are rejected by Setup.

IMPLEMENTATION RULES:
  - Use `log/slog`.

USAGE:
  output.Logger.Info("message", "key", "value")
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Setup installs a logger writing to w in the given format ("text" or "json").
// verbose enables debug level.
func Setup(w io.Writer, format string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		Logger = slog.New(slog.NewTextHandler(w, opts))
	case "json":
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return nil
}
