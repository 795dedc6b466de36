package premortem

import (
	"log/slog"
	"os"
)

var logLevel = new(slog.LevelVar)

// ConfigureLogging sets up the global default logger with a TextHandler
// and configures the log level based on the PREMORTEM_LOG_LEVEL environment variable.
// It defaults to Info level if not specified.
func ConfigureLogging() {
	logLevel.Set(ParseLogLevel(os.Getenv("PREMORTEM_LOG_LEVEL")))

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLogLevel sets the logging level for the logger configured by ConfigureLogging.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// ParseLogLevel maps DEBUG, WARN and ERROR to their slog levels; anything else is Info.
func ParseLogLevel(lvl string) slog.Level {
	switch lvl {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
