package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/liftops/lift-telemetry-service/config"
	"github.com/liftops/lift-telemetry-service/internal/dash"
)

const (
	ServiceName      = "lift-telemetry-service"
	ServiceNamespace = "liftops"
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	app := &cli.App{
		Name:    ServiceName,
		Usage:   "Elevator telemetry ingestion and analytics service",
		Version: version,
		Commands: []*cli.Command{
			serverCmd(),
			dashCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Run the telemetry server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config_file",
				Usage: "Path to the configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			app := NewApp(cfg)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("Shutting down...")
			return app.Stop(context.Background())
		},
	}
}

func dashCmd() *cli.Command {
	return &cli.Command{
		Name:    "dash",
		Aliases: []string{"d"},
		Usage:   "Run the terminal dashboard against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "http://localhost:8080",
				Usage: "Base URL of the telemetry HTTP API",
			},
			&cli.DurationFlag{
				Name:  "refresh",
				Value: 2 * time.Second,
				Usage: "Poll interval for dashboard data",
			},
		},
		Action: func(c *cli.Context) error {
			return dash.Run(c.String("addr"), c.Duration("refresh"))
		},
	}
}
