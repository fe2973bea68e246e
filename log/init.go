package log

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

// ParseLevel converts a configured level name. An empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// InitStep returns a package init step that installs a ConsoleHandler for
// the loading runtime as the slog default. The level comes from the
// runtime configuration unless opts set one.
func InitStep(opts ...HandlerOption) func(rt ports.Runtime, lc ports.LoadContext) error {
	return func(rt ports.Runtime, lc ports.LoadContext) error {
		level, err := ParseLevel(rt.Config().LogLevel)
		if err != nil {
			return err
		}
		all := append([]HandlerOption{WithLevel(level)}, opts...)
		logger := slog.New(NewHandler(rt, all...)).With("package", lc.PackageName())
		slog.SetDefault(logger)
		logger.Debug("slog handler initialized")
		return nil
	}
}
