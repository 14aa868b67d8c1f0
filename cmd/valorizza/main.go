// Command valorizza serve il generatore di lettere di valorizzazione:
// form di caricamento estratti, anteprima e download del .docx.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"valorizza/internal/cli"
	apphttp "valorizza/internal/http"
	applog "valorizza/internal/log"
)

func main() {
	cli.LoadEnvFile()
	slogger := cli.NewLogger(os.Stdout)
	cfg := cli.InitConfig(slogger)

	reg := cli.InitRegistry(slogger)
	repo := cli.InitStorage(slogger, cfg.SQLiteDBPath)
	defer repo.Close()

	logger := applog.New(applog.Config{
		Handler:   slogger.Handler(),
		Component: applog.ComponentHTTP,
	})
	srv := apphttp.NewServer(cfg, reg, repo, logger)

	// Uploads of a few MB over slow links need more room than the
	// defaults, the responses are small.
	srv.ReadTimeout = 60 * time.Second
	srv.WriteTimeout = 60 * time.Second
	srv.IdleTimeout = 120 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slogger.Info("Starting valorizza server",
			"port", cfg.Port,
			"db_path", cfg.SQLiteDBPath,
			"max_upload_mb", cfg.MaxUploadMB)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		slogger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		slogger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	slogger.Info("Server stopped gracefully")
}
