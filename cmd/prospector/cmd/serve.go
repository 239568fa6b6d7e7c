package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solatis/prospector/internal/core/auth"
	"github.com/solatis/prospector/internal/core/config"
	"github.com/solatis/prospector/internal/core/server"
	"github.com/solatis/prospector/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC filter API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.Get()

	secrets, err := config.APISecrets()
	if err != nil {
		return fmt.Errorf("failed to load API secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("%w (set PROSPECTOR_API_SECRET environment variable)", auth.ErrNoSecrets)
	}

	rt, err := openRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	authenticator := auth.NewAuthenticator(secrets, rt.queries, log)
	grpcServer, err := server.NewGRPCServer(&cfg.API, rt.service, authenticator, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting prospector filter API", "version", Version, "address", cfg.API.Address(), "secrets", len(secrets))
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Infow("shutting down gracefully")
		if err := grpcServer.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
