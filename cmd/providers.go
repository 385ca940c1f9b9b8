package cmd

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/liftops/lift-telemetry-service/config"
)

// ProvideLogger builds the process-wide structured logger from the log
// section of the configuration and installs it as the slog default, so code
// outside the container logs through the same handler.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	case "otel":
		handler = otelslog.NewHandler(ServiceName)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
