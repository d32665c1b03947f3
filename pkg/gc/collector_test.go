package gc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
)

func openSession(m *session.Manager, user string) *session.Session {
	db := &store.Database{GUID: uuid.New(), ReplGUID: uuid.New(), Name: "mdb01"}
	return m.Open(&session.Session{
		Kind:     session.KindPrivateMailbox,
		Database: db,
		Mailbox:  &store.Mailbox{GUID: uuid.New(), DatabaseGUID: db.GUID},
		UserDN:   user,
	})
}

func TestNewCollector_RequiresManager(t *testing.T) {
	_, err := NewCollector(nil, Config{})
	assert.Error(t, err)
}

func TestRunNow_ClosesIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := session.NewManager(nil)
	m.SetClock(func() time.Time { return now })

	stale := openSession(m, "/cn=alice")
	require.NoError(t, stale.UpdateWriteProgress(func(*session.WriteProgress) (*session.WriteProgress, error) {
		return &session.WriteProgress{BytesWritten: 3, Buffer: []byte("abc")}, nil
	}))

	now = now.Add(20 * time.Minute)
	fresh := openSession(m, "/cn=bob")
	now = now.Add(15 * time.Minute)

	c, err := NewCollector(m, Config{IdleTimeout: 30 * time.Minute})
	require.NoError(t, err)

	stats, err := c.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.ActiveCount)
	assert.Equal(t, uint64(1), stats.IdleCount)
	assert.Equal(t, uint64(1), stats.ClosedCount)
	assert.Equal(t, uint64(1), stats.AbandonedWrites)
	assert.Contains(t, stats.Summary(), "closed=1")

	_, err = m.Get(stale.ID)
	assert.True(t, store.IsNotFound(err))
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
	assert.False(t, stale.HasWriteInProgress())
}

func TestRunNow_CancelledContext(t *testing.T) {
	c, err := NewCollector(session.NewManager(nil), Config{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.RunNow(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartStop(t *testing.T) {
	m := session.NewManager(nil)
	c, err := NewCollector(m, Config{Enabled: true, Interval: 5 * time.Millisecond, IdleTimeout: time.Nanosecond})
	require.NoError(t, err)

	openSession(m, "/cn=alice")
	c.Start()
	c.Start()

	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx))
}

func TestStop_Disabled(t *testing.T) {
	c, err := NewCollector(session.NewManager(nil), Config{})
	require.NoError(t, err)

	c.Start()
	assert.NoError(t, c.Stop(context.Background()))
}
