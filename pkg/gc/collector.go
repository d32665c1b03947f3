// Package gc reclaims logon sessions that clients abandoned.
//
// A client that disconnects without releasing its logon leaves the session
// and any half-finished per-user write behind. The collector closes sessions
// that have been inactive for longer than the idle timeout, which also
// discards their pending writes.
package gc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/session"
)

// Collector performs periodic idle-session collection.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	sessions *session.Manager
	config   Config

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Config contains configuration for the collector.
type Config struct {
	// Enabled controls whether collection is active
	Enabled bool

	// Interval is how often to scan for idle sessions (default: 1m)
	Interval time.Duration

	// IdleTimeout is how long a session may stay inactive (default: 30m)
	IdleTimeout time.Duration
}

// NewCollector creates a collector. Call Start to begin background collection.
func NewCollector(sessions *session.Manager, config Config) (*Collector, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	if config.Interval == 0 {
		config.Interval = time.Minute
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 30 * time.Minute
	}

	return &Collector{
		sessions: sessions,
		config:   config,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins background collection. Subsequent calls are no-ops.
func (c *Collector) Start() {
	if !c.config.Enabled {
		logger.Info("Session collector disabled")
		return
	}

	c.startOnce.Do(func() {
		logger.Info("Starting session collector: interval=%s idle_timeout=%s",
			c.config.Interval, c.config.IdleTimeout)
		c.started = true
		go c.worker()
	})
}

// Stop stops the collector and waits for an in-progress run to finish.
// Safe to call multiple times.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.config.Enabled || !c.started {
		return nil
	}

	c.stopOnce.Do(func() {
		logger.Info("Stopping session collector...")
		close(c.stopCh)
	})

	select {
	case <-c.doneCh:
		logger.Info("Session collector stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Session collector shutdown timeout")
		return ctx.Err()
	}
}

// RunNow runs a collection immediately, regardless of Enabled.
func (c *Collector) RunNow(ctx context.Context) (*Stats, error) {
	return c.collect(ctx)
}

func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := c.collect(context.Background())
			if err != nil {
				logger.Error("Session collection failed: %v", err)
			} else if stats.ClosedCount > 0 {
				logger.Info("Session collection completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			return
		}
	}
}

// collect closes the sessions idle for longer than the timeout.
func (c *Collector) collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	now := c.sessions.Now()
	open := c.sessions.List()
	stats.ActiveCount = uint64(len(open))

	for _, s := range open {
		if now.Sub(s.LastActive()) <= c.config.IdleTimeout {
			continue
		}
		stats.IdleCount++
		if s.HasWriteInProgress() {
			stats.AbandonedWrites++
			logger.Debug("GC: session %s (%s) has an unfinished per-user write", s.ID, s.UserDN)
		}
	}

	if stats.IdleCount > 0 {
		stats.ClosedCount = uint64(c.sessions.CloseIdle(c.config.IdleTimeout))
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// Stats contains statistics from a collection run.
type Stats struct {
	StartTime       time.Time // When collection started
	EndTime         time.Time // When collection ended
	ActiveCount     uint64    // Sessions open when the run started
	IdleCount       uint64    // Sessions past the idle timeout
	ClosedCount     uint64    // Sessions actually closed
	AbandonedWrites uint64    // Idle sessions that had a write in flight
}

// Duration returns the total collection duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the collection.
func (s *Stats) Summary() string {
	return fmt.Sprintf("active=%d idle=%d closed=%d abandoned_writes=%d duration=%s",
		s.ActiveCount, s.IdleCount, s.ClosedCount, s.AbandonedWrites, s.Duration())
}
