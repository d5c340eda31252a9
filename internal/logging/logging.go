// internal/logging/logging.go
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/config"
)

// EnvLogLevel overrides log.level from the config file.
const EnvLogLevel = "GPSDOCTL_LOG_LEVEL"

// New builds the process logger. Logs go to w (stderr in production);
// command output never goes through the logger.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level := cfg.Level
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}

	out := w
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("app", "gpsdoctl").
		Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names fall back to info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
