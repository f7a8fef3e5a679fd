package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Services and handlers
// receive it through constructors; nothing logs through a package global.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
