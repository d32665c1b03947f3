// Package service implements the store metadata operations of a logon
// session: identifier translation, receive folder routing, per-user
// information transfer and public folder replica queries.
//
// Every operation takes the caller's *session.Session. The session pins the
// database (and therefore the IdentifierMap) used for all translations and
// owns any in-flight chunked write.
package service

import (
	"context"
	"time"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/metrics"
	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

// Service executes store metadata operations.
//
// Service keeps no per-session state of its own and is safe for concurrent
// use.
type Service struct {
	behavior Behavior

	// localServer is the DN of the node serving requests, used to decide
	// whether a public folder replica is local
	localServer string

	metrics metrics.StoreMetrics
	now     func() time.Time
}

// Config configures a Service.
type Config struct {
	Behavior    Behavior
	LocalServer string
	Metrics     metrics.StoreMetrics
}

// New creates a Service.
func New(cfg Config) *Service {
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopStoreMetrics()
	}
	return &Service{
		behavior:    cfg.Behavior.withDefaults(),
		localServer: cfg.LocalServer,
		metrics:     m,
		now:         time.Now,
	}
}

// Behavior returns the variant behavior in effect.
func (s *Service) Behavior() Behavior {
	return s.behavior
}

// LocalServer returns the DN of the serving node.
func (s *Service) LocalServer() string {
	return s.localServer
}

// observe records the outcome of operation. Use with defer and a named error.
func (s *Service) observe(operation string, start time.Time, err *error) {
	s.metrics.RecordOperation(operation, time.Since(start), *err)
	if *err != nil {
		logger.Debug("%s failed: %v", operation, *err)
	}
}

func requirePrivate(sess *session.Session, operation string) error {
	if !sess.IsPrivate() {
		return store.NewNotSupportedError(operation + " requires a private mailbox logon")
	}
	return nil
}

func requireSession(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil || sess.Store == nil || sess.Database == nil {
		return store.NewInvalidParameterError("session is not logged on")
	}
	return nil
}
