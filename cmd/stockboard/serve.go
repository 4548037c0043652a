package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	httpDelivery "github.com/stockboard/backend/internal/delivery/http"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and keep the board in sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", ":"+a.cfg.Server.Port)
			if err != nil {
				return fmt.Errorf("listen on port %s: %w", a.cfg.Server.Port, err)
			}
			return serve(cmd.Context(), a, listener)
		},
	}
}

// serve runs the API on listener and the board watcher until ctx is done
func serve(ctx context.Context, a *app, listener net.Listener) error {
	handler := httpDelivery.NewHandler(a.ingestion, a.board, a.client, a.logger)
	router := httpDelivery.SetupRouter(a.cfg, handler, a.logger)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("starting stockboard",
		zap.String("version", "1.0.0"),
		zap.String("environment", a.cfg.Server.Environment),
		zap.String("addr", listener.Addr().String()),
		zap.String("remote", a.cfg.Remote.BaseURL),
		zap.Duration("cache_ttl", a.cfg.Cache.TTL))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.board.Watch(groupCtx, a.collection)
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.logger.Info("shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return group.Wait()
}
