// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/adcat/pkg/api"
	"github.com/luxfi/adcat/pkg/exchange"
	"github.com/luxfi/adcat/pkg/feed"
	"github.com/luxfi/adcat/pkg/log"
	"github.com/luxfi/adcat/pkg/metric"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	m, err := metric.NewMetrics()
	if err != nil {
		return err
	}
	hub := feed.NewHub(rt.log.With(log.String("component", "feed")), feed.WithClientGauge(m.FeedClients))
	defer hub.Close()

	svc, err := rt.exchange(exchange.WithMetrics(m), exchange.WithPublisher(hub))
	if err != nil {
		return err
	}

	router := api.NewRouter(svc, api.Config{
		Env:         rt.cfg.Server.Env,
		CORSOrigins: rt.cfg.Server.CORSOrigins,
		AdImagesDir: rt.cfg.Assets.AdImages,
	},
		api.WithLogger(rt.log.With(log.String("component", "api"))),
		api.WithMetrics(m),
		api.WithFeed(hub),
	)

	srv := &http.Server{
		Addr:              rt.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	rt.log.Info("adcat API server started",
		log.String("addr", rt.cfg.Server.Addr),
		log.String("env", rt.cfg.Server.Env),
		log.String("storage", string(rt.cfg.Storage.Backend)),
		log.Duration("billing_period", rt.cfg.Billing.Period),
		log.Int("categories", len(svc.Categories())),
		log.String("version", Version))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error("server forced to shutdown", log.Error(err))
		return err
	}
	rt.log.Info("server exiting")
	return nil
}
