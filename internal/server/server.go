// Package server runs the HTTP and gRPC listeners until the process is
// signalled, then shuts everything down in reverse order.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishi360/krishi/app/listeners"
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/config"
	"github.com/krishi360/krishi/internal/kernel"
	"github.com/krishi360/krishi/pkg/broker"
	"github.com/krishi360/krishi/pkg/cache"
	"github.com/krishi360/krishi/pkg/database"
	"github.com/krishi360/krishi/pkg/event"
	"github.com/krishi360/krishi/pkg/grpc"
	"github.com/krishi360/krishi/pkg/logger"
	"github.com/krishi360/krishi/pkg/session"
	"github.com/krishi360/krishi/pkg/workerpool"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub *broker.Publisher
	if url := config.RabbitMQURL(); url != "" {
		var err error
		if pub, err = broker.Dial(url, config.EventsExchange()); err != nil {
			return err
		}
		defer pub.Close() //nolint:errcheck
	}

	// Deferred after the broker so queued listeners drain before it closes.
	pool := workerpool.New(config.EventWorkers())
	defer pool.Shutdown()

	bus := event.NewBus(pool)
	listeners.RegisterNotifications(bus, services.NewNotificationService(database.DB))
	if pub != nil {
		listeners.RegisterForwarder(bus, pub)
		logger.Info("forwarding events to broker", "exchange", config.EventsExchange())
	}

	sessions, closeSessions := sessionStore(ctx)
	defer closeSessions()

	k, err := kernel.NewHTTPKernel(kernel.Deps{
		DB:       database.DB,
		Events:   bus,
		Sessions: sessions,
	})
	if err != nil {
		return err
	}

	grpcSrv, _, err := grpc.Start(config.GRPCPort(), func(ctx context.Context) error {
		return database.Ping(ctx, database.DB)
	})
	if err != nil {
		return err
	}
	defer grpc.Stop(grpcSrv)

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", httpSrv.Addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// sessionStore prefers Redis and falls back to process memory when Redis is
// not configured or not reachable.
func sessionStore(ctx context.Context) (session.Store, func()) {
	if config.SessionStore() == "memory" {
		return session.NewMemoryStore(), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client, err := cache.Connect(pingCtx)
	if err != nil {
		logger.Warn("redis unavailable, keeping sessions in memory", "error", err)
		return session.NewMemoryStore(), func() {}
	}
	return session.NewRedisStore(client), func() { _ = client.Close() }
}
