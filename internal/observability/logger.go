package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the JSON logger used process wide. Every record names the
// service, and records logged under a request context carry its ids.
func NewLogger(svc ServiceInfo) *slog.Logger {
	return newLogger(svc, os.Stdout)
}

func newLogger(svc ServiceInfo, w io.Writer) *slog.Logger {
	level := slog.LevelInfo

	if svc.Env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}).WithAttrs([]slog.Attr{
		slog.String("service", svc.Name),
		slog.String("version", svc.Version),
		slog.String("env", svc.Env),
	})

	return slog.New(NewContextHandler(handler))
}
