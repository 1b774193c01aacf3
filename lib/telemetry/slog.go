package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler, `debug` drops the level
// down from info.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
