package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/httpapi"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	redisadapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/manager"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP event ingress",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	var (
		store  ports.Store
		locker ports.Locker
	)
	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redisadapter.NewFromClient(client,
			redisadapter.WithPrefix(cfg.Redis.Prefix),
			redisadapter.WithTTL(time.Duration(cfg.Redis.TTL)),
		)
		locker = redisadapter.NewLocker(client, cfg.Redis.Prefix)
		logger.Info("using redis session store", "addr", cfg.Redis.Addr)
	} else {
		store = memory.NewStore()
		logger.Warn("no redis configured, sessions are in-memory only")
	}

	sender := ports.SenderFunc(func(_ context.Context, channelID, text string) error {
		// Outbound delivery belongs to the platform gateway; the ingress
		// only logs what would be sent.
		logger.Info("outbound message", "channel_id", channelID, "text", text)
		return nil
	})

	opts := []manager.Option{
		manager.WithLogger(logger),
		manager.WithCommandPrefix(cfg.CommandPrefix),
		manager.WithControls(flow.Controls{GoBack: cfg.Controls.GoBack, Reload: cfg.Controls.Reload}),
		manager.WithMetrics(observability.NewMetrics(prometheus.DefaultRegisterer)),
		manager.OnFinish(summaryCallback(sender)),
	}
	if locker != nil {
		opts = append(opts, manager.WithLocker(locker))
	}

	mgr, err := manager.New(store, sampleFlows(sender), opts...)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: httpapi.NewServer(mgr, httpapi.WithLogger(logger)).Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
