package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reqcraft/internal/build"
	"reqcraft/internal/server"
	"reqcraft/internal/watcher"
)

const shutdownGrace = 5 * time.Second

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev [path]",
		Short: "Build a model from path, start the server, and watch for changes",
		Long:  "Build model from path (default ./api.rqc), start the server, and watch files for changes.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveDevConfig(&commandFlags{flags: cmd.Flags(), persistent: cmd.Root().PersistentFlags()}, args)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Verbose)
			return runDev(cmd.Context(), log, cfg)
		},
	}

	cmd.Flags().Bool("mock", false, "Enable mock mode (reported to clients as mockMode; /mock/ is served either way)")
	cmd.Flags().Bool("cors", false, "Enable CORS proxy mode (reported to clients as corsMode; /proxy/ and CORS headers are served either way)")
	cmd.Flags().Int("port", 0, "Port to bind (env REQCRAFT_PORT)")
	cmd.Flags().String("host", "", "Host/address to bind (env REQCRAFT_HOST)")

	return cmd
}

func runDev(ctx context.Context, log *slog.Logger, cfg *DevConfig) error {
	res := build.Run(ctx, cfg.Path, build.Options{})
	if res.Diags.HasErrors() {
		printDiagnostics(os.Stderr, res.Diags)
		return exitErrorf(3, "dev: %d error(s) while building %s", len(res.Diags.Errors()), cfg.Path)
	}

	res.Model.Mock = res.Model.Mock || cfg.Mock
	res.Model.Cors = res.Model.Cors || cfg.Cors

	srv := server.New(log, server.Config{Name: "reqcraft", Version: "dev"}, res.Model)

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return exitErrorf(4, "dev: bind %s: %v", addr, err)
	}
	log.Info("listening", "addr", addr, "mock", res.Model.Mock, "cors", res.Model.Cors)

	httpServer := &http.Server{Handler: srv.Handler()}
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- httpServer.Serve(listener) }()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	w, err := watcher.New(log, cfg.Path, build.Options{}, watcher.Callbacks{
		OnSuccess: srv.Swap,
		OnFailure: srv.ReportBuildError,
	})
	if err != nil {
		return exitErrorf(3, "dev: start watcher: %v", err)
	}
	go func() {
		if err := w.Run(watchCtx); err != nil && ctx.Err() == nil && watchCtx.Err() == nil {
			log.Warn("watcher stopped", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutting down")
	case err := <-serveErrCh:
		if err != nil && err != http.ErrServerClosed {
			return exitErrorf(4, "dev: server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
