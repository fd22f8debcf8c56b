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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bakery/internal/httpapi"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Attach the store, apply pending migrations, and serve the API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.viper.Set(cfgKeyAddr, addr)
			}
			return a.runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+defaultAddr+")")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.viper.GetString(cfgKeyLogLevel), a.viper.GetString(cfgKeyLogFormat))
	if err != nil {
		return err
	}
	mode := a.viper.GetString(cfgKeyGinMode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	default:
		return fmt.Errorf("unknown gin_mode %q", mode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := a.attachStore(ctx)
	if err != nil {
		return err
	}
	defer store.Detach()

	api := httpapi.New(store, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: a.viper.GetStringSlice(cfgKeyAllowedOrigins),
	})
	server := &http.Server{
		Addr:              a.viper.GetString(cfgKeyAddr),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("bakery API listening",
			slog.String("addr", server.Addr),
			slog.String("backend", a.viper.GetString(cfgKeyBackend)),
		)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return sysError(fmt.Errorf("server stopped unexpectedly: %w", err))
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.viper.GetDuration(cfgKeyShutdownTimeout))
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return sysError(fmt.Errorf("shutdown: %w", err))
	}
	return nil
}
