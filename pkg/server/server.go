// Package server assembles the store metadata service from configuration and
// manages its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/internal/protocol/rop"
	"github.com/marmos91/dittostore/pkg/config"
	"github.com/marmos91/dittostore/pkg/gc"
	"github.com/marmos91/dittostore/pkg/logon"
	"github.com/marmos91/dittostore/pkg/metrics"
	"github.com/marmos91/dittostore/pkg/registry"
	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/session"
)

// StoreServer owns every long-lived component of a running store: the
// registry with its metadata stores, the session manager, the idle-session
// collector and the optional metrics endpoint.
//
// Lifecycle:
//  1. Creation: New() builds everything from a validated Config
//  2. Startup: Serve() starts the collector and metrics server
//  3. Shutdown: context cancellation closes all sessions and stores
//
// Serve must only be called once per instance.
type StoreServer struct {
	registry  *registry.Registry
	sessions  *session.Manager
	service   *service.Service
	resolver  *logon.Resolver
	handler   *rop.Handler
	collector *gc.Collector
	metrics   *metrics.Server

	shutdownTimeout time.Duration
	served          atomic.Bool
}

// New creates a StoreServer from cfg. The returned server owns the opened
// stores; release them with Serve or Close.
func New(ctx context.Context, cfg *config.Config) (*StoreServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	s := &StoreServer{shutdownTimeout: cfg.Server.ShutdownTimeout}

	metricsResult := config.InitializeMetrics(cfg, s.Healthcheck)
	s.metrics = metricsResult.Server

	behavior, err := config.BuildBehavior(&cfg.Behavior)
	if err != nil {
		return nil, fmt.Errorf("invalid behavior: %w", err)
	}
	throttle, err := config.CreateThrottle(&cfg.Logon)
	if err != nil {
		return nil, err
	}

	reg, err := config.InitializeRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.registry = reg

	s.sessions = session.NewManager(metricsResult.StoreMetrics)
	s.service = service.New(service.Config{
		Behavior:    behavior,
		LocalServer: cfg.Server.Name,
		Metrics:     metricsResult.StoreMetrics,
	})
	s.resolver = logon.NewResolver(logon.Config{
		Registry: reg,
		Sessions: s.sessions,
		Service:  s.service,
		Throttle: throttle,
		Metrics:  metricsResult.StoreMetrics,
	})
	s.handler = rop.NewHandler(s.service, s.resolver, s.sessions)

	s.collector, err = gc.NewCollector(s.sessions, gc.Config{
		Enabled:     true,
		Interval:    cfg.Server.CollectorInterval,
		IdleTimeout: cfg.Server.SessionIdleTimeout,
	})
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	logger.Info("Store server %q ready: %d database(s), variant=%s",
		cfg.Server.Name, len(reg.ListDatabases()), cfg.Behavior.Variant)
	return s, nil
}

// Handler returns the ROP handler serving this store.
func (s *StoreServer) Handler() *rop.Handler {
	return s.handler
}

// Registry returns the database registry.
func (s *StoreServer) Registry() *registry.Registry {
	return s.registry
}

// Sessions returns the session manager.
func (s *StoreServer) Sessions() *session.Manager {
	return s.sessions
}

// Healthcheck reports whether every metadata store is reachable.
func (s *StoreServer) Healthcheck(ctx context.Context) error {
	if s.registry == nil {
		return fmt.Errorf("registry not initialized")
	}
	return s.registry.Healthcheck(ctx)
}

// Serve starts background components and blocks until ctx is cancelled or
// the metrics server fails. On return all sessions and stores are closed.
//
// Returns ctx.Err() after a cancellation-triggered shutdown.
func (s *StoreServer) Serve(ctx context.Context) error {
	if !s.served.CompareAndSwap(false, true) {
		return fmt.Errorf("store server is already serving")
	}

	logger.Info("Starting store server")
	s.collector.Start()

	g, gctx := errgroup.WithContext(ctx)
	if s.metrics != nil {
		g.Go(func() error {
			return s.metrics.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	serveErr := g.Wait()
	if serveErr == nil {
		serveErr = ctx.Err()
	} else {
		logger.Error("Store server failed: %v - initiating shutdown", serveErr)
	}

	if err := s.shutdown(); err != nil {
		serveErr = errors.Join(serveErr, err)
	}

	logger.Info("Store server stopped")
	return serveErr
}

// Close releases all resources without serving. Safe after Serve returned.
func (s *StoreServer) Close() error {
	if s.served.CompareAndSwap(false, true) {
		return s.shutdown()
	}
	return nil
}

// shutdown stops the collector, ends every session and closes the stores.
func (s *StoreServer) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.collector.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("collector: %w", err))
	}
	if s.metrics != nil {
		if err := s.metrics.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	logger.Info("Closing %d open session(s)", s.sessions.Count())
	s.sessions.CloseAll()

	if err := s.registry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("registry: %w", err))
	}
	return errors.Join(errs...)
}
