package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bulletin/src-server/metric"
	"bulletin/src-server/route"
	"bulletin/src-server/scheduler"
	"bulletin/src-server/utils"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP server, metrics and the daily digest",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := rootOpts.OpenAppState()
			if err != nil {
				return err
			}
			return runServe(as)
		},
	}
}

func runServe(as *utils.AppState) error {
	metric.Init(as)

	if as.DgSession != nil {
		if err := as.DgSession.Open(); err != nil {
			return fmt.Errorf("serve: can't open discord session: %w", err)
		}
		if err := scheduler.Digest(as); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		slog.Info("daily digest scheduled", "cron", as.Config.GetDigestCron())
	}

	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           route.NewMux(as),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	as.GracefulShutdown()
	return nil
}
