package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	httpadapter "github.com/bnema/recap/internal/adapter/http"
	"github.com/bnema/recap/internal/infrastructure/logger"
	"github.com/bnema/recap/internal/service"
)

const shutdownTimeout = 30 * time.Second

type ServeOptions struct {
	GlobalOptions

	Port    int
	Workers int
}

func DefaultServeOptions() *ServeOptions {
	return &ServeOptions{GlobalOptions: DefaultGlobalOptions()}
}

func NewCmdServe() *cobra.Command {
	o := DefaultServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background workers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ServeOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.IntVar(&o.Port, "port", o.Port, "Override PORT")
	fs.IntVar(&o.Workers, "workers", o.Workers, "Override WORKERS")
}

func (o *ServeOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

func (o *ServeOptions) Run(ctx context.Context) error {
	app, err := o.App()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	cfg := app.Config
	if o.Port > 0 {
		cfg.Port = o.Port
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workers stop only once the listener has drained.
	workerCtx, workerCancel := context.WithCancel(context.WithoutCancel(ctx))
	defer workerCancel()

	pool := service.NewWorkerPool(app.Queue, app.Pipeline, app.Metrics, cfg.Workers)
	pool.Start(workerCtx)

	server := httpadapter.NewServer(app.Pipeline, app.Jobs, app.Events, app.Layout, httpadapter.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.CORSOrigins,
		Metrics:        app.Metrics.Handler(),
		Requests:       app.Metrics,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info.Printf("shutdown signal received, draining")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		httpServer.SetKeepAlivesEnabled(false)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		workerCancel()
	}()

	logger.Info.Printf("recap listening on %s with %d workers", cfg.Addr(), cfg.Workers)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		workerCancel()
		pool.Wait()
		return fmt.Errorf("server failed: %w", err)
	}

	pool.Wait()
	logger.Info.Printf("shutdown complete")
	return nil
}
