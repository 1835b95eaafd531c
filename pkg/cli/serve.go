package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/neonzero/OpenERM/pkg/cli/config"
	httpctrl "github.com/neonzero/OpenERM/pkg/controller/http"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/service/worker"
	"github.com/neonzero/OpenERM/pkg/usecase"
	"github.com/neonzero/OpenERM/pkg/utils/async"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var overdueInterval time.Duration
	var eventLog bool
	var eventLogSize int
	var repoCfg config.Repository
	var settingsCfg config.Settings
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("OPENERM_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "overdue-interval",
			Usage:       "Interval of the overdue treatment check (0 disables it)",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("OPENERM_OVERDUE_INTERVAL"),
			Destination: &overdueInterval,
		},
		&cli.BoolFlag{
			Name:        "event-log",
			Usage:       "Keep emitted events in memory and expose them on /api/tenants/{tenantID}/events",
			Sources:     cli.EnvVars("OPENERM_EVENT_LOG"),
			Destination: &eventLog,
		},
		&cli.IntFlag{
			Name:        "event-log-size",
			Usage:       "Number of recent events kept by --event-log",
			Value:       event.DefaultRecorderCapacity,
			Sources:     cli.EnvVars("OPENERM_EVENT_LOG_SIZE"),
			Destination: &eventLogSize,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, settingsCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			provider, err := settingsCfg.Configure()
			if err != nil {
				return err
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepository(repo)

			sinks := []interfaces.EventSink{event.NewLogSink()}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifier")
			}
			if notifier != nil {
				sinks = append(sinks, notifier)
				logging.Default().Info("Slack breach notifications enabled", "slack", slackCfg)
			} else {
				logging.Default().Info("Slack Bot Token not configured, breach notifications disabled")
			}

			var httpOpts []httpctrl.Options
			if eventLog {
				recorder := event.NewRecorder(event.WithCapacity(eventLogSize))
				sinks = append(sinks, recorder)
				httpOpts = append(httpOpts, httpctrl.WithEventLog(recorder))
			}

			uc := usecase.New(repo,
				usecase.WithSettings(provider),
				usecase.WithEventSink(event.NewFanout(sinks...)),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			var overdueWorker *worker.OverdueTreatmentWorker
			if overdueInterval > 0 {
				overdueWorker = worker.NewOverdueTreatmentWorker(uc.Treatment, provider.TenantIDs, overdueInterval)
				if err := overdueWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start overdue treatment worker")
				}
			}

			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})

			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down server")

				// Stop the worker before the server
				if overdueWorker != nil {
					overdueWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				if err := async.Wait(shutdownCtx); err != nil {
					logging.Default().Warn("pending notifications were not delivered", "error", err)
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
