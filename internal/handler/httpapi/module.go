package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	"github.com/liftops/lift-telemetry-service/config"
)

var Module = fx.Module(
	"httpapi",

	fx.Provide(NewHandler),

	fx.Invoke(func(lc fx.Lifecycle, h *Handler, cfg *config.Config, logger *slog.Logger) {
		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: h.Routes(),
			// No read/write timeouts: the SSE and WebSocket endpoints hold
			// their connections open indefinitely.
			ReadHeaderTimeout: 5 * time.Second,
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return fmt.Errorf("listen %s: %w", srv.Addr, err)
				}
				logger.Info("http server listening", slog.String("addr", srv.Addr))
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("http server failed", slog.Any("error", err))
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}),
)
