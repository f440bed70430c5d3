package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/cmd/integrator/config"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/banks"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/gocardless"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/reconciler"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/server"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/logger"
)

// serveCmd runs the HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the integrator HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			port, _ := cmd.Flags().GetInt("port")
			viper.Set("port", port)
		}
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP listener port (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = string(logger.DebugLevel)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}

	rec, err := reconciler.New(&reconciler.Config{BalanceTypes: cfg.BalanceTypes})
	if err != nil {
		return err
	}

	client := gocardless.NewClient(gocardless.ClientConfig{
		SecretID:    cfg.SecretID,
		SecretKey:   cfg.SecretKey,
		BaseURL:     cfg.BaseURL,
		RedirectURI: cfg.RedirectURI,
	})

	service := gocardless.NewService(client, banks.Builtin(), rec, log)
	srv := server.New(service, log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.WithFields(logger.Fields{
		"port":       cfg.Port,
		"configured": client.IsConfigured(),
	}).Info("integrator listening")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
