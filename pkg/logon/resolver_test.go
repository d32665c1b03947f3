package logon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/internal/ratelimiter"
	"github.com/marmos91/dittostore/pkg/registry"
	"github.com/marmos91/dittostore/pkg/service"
	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
	"github.com/marmos91/dittostore/pkg/store/memory"
)

const (
	localServer  = "/o=Test/ou=Servers/cn=local"
	remoteServer = "/o=Test/ou=Servers/cn=remote"
	aliceDN      = "/o=Test/ou=Users/cn=alice"
	bobDN        = "/o=Test/ou=Users/cn=bob"
	carolDN      = "/o=Test/ou=Users/cn=carol"
	daveDN       = "/o=Test/ou=Users/cn=dave"
)

const privateOpen = OpenUsePerMDBReplIDMapping | OpenHomeLogon

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) RecordOperation(string, time.Duration, error) {}
func (m *recordingMetrics) SetActiveSessions(int)                        {}
func (m *recordingMetrics) RecordSessionClosed(string)                   {}
func (m *recordingMetrics) RecordPerUserBytes(string, int)               {}

func (m *recordingMetrics) RecordLogon(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type fixture struct {
	registry *registry.Registry
	sessions *session.Manager
	metrics  *recordingMetrics
	resolver *Resolver
}

func newFixture(t *testing.T, behavior service.Behavior, throttle *ratelimiter.KeyedLimiter) *fixture {
	t.Helper()
	ctx := context.Background()

	reg := registry.NewRegistry(localServer)
	require.NoError(t, reg.RegisterStore("default", memory.NewMemoryMetadataStoreWithDefaults()))
	t.Cleanup(func() { _ = reg.Close() })

	_, err := reg.AddDatabase(ctx, &registry.DatabaseConfig{Name: "mdb01", Kind: store.DatabaseMailbox, Store: "default"})
	require.NoError(t, err)
	_, err = reg.AddDatabase(ctx, &registry.DatabaseConfig{Name: "mdb02", Kind: store.DatabaseMailbox, Store: "default", Server: remoteServer})
	require.NoError(t, err)
	_, err = reg.AddDatabase(ctx, &registry.DatabaseConfig{Name: "pf01", Kind: store.DatabasePublicFolders, Store: "default"})
	require.NoError(t, err)

	for _, mb := range []registry.MailboxConfig{
		{LegacyDN: aliceDN, Database: "mdb01", Delegates: []string{bobDN}},
		{LegacyDN: bobDN, Database: "mdb01"},
		{LegacyDN: carolDN, Database: "mdb01"},
		{LegacyDN: daveDN, Database: "mdb02"},
	} {
		_, err := reg.AddMailbox(ctx, &mb)
		require.NoError(t, err)
	}

	for _, pf := range []registry.PublicFolderConfig{
		{Database: "pf01", DisplayName: "Root", Role: store.RoleRoot, GlobalCounter: 100},
		{Database: "pf01", DisplayName: "IPM_SUBTREE", Role: store.RoleIPMSubtree, GlobalCounter: 101},
		{Database: "pf01", DisplayName: "NON_IPM_SUBTREE", Role: store.RoleNonIPMSubtree, GlobalCounter: 102},
	} {
		_, err := reg.AddPublicFolder(ctx, &pf)
		require.NoError(t, err)
	}

	m := &recordingMetrics{}
	sessions := session.NewManager(m)
	svc := service.New(service.Config{Behavior: behavior, LocalServer: localServer, Metrics: m})

	return &fixture{
		registry: reg,
		sessions: sessions,
		metrics:  m,
		resolver: NewResolver(Config{Registry: reg, Sessions: sessions, Service: svc, Throttle: throttle, Metrics: m}),
	}
}

func TestPrivateLogon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.LegacyBehavior(), nil)

	result, err := f.resolver.Logon(ctx, Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: privateOpen})
	require.NoError(t, err)

	db, err := f.registry.GetDatabase("mdb01")
	require.NoError(t, err)

	assert.True(t, result.Session.IsPrivate())
	assert.Equal(t, db.GUID, result.Session.Database.GUID)
	assert.Equal(t, registry.MailboxGUID(aliceDN), result.MailboxGUID)
	assert.Equal(t, store.LocalReplID, result.ReplID)
	assert.Equal(t, db.ReplGUID, result.ReplGUID)
	assert.Equal(t, ResponseReserved|ResponseOwnerRight|ResponseSendAsRight, result.ResponseFlags)
	assert.Equal(t, store.NewID(store.LocalReplID, 1), result.FolderIDs[store.FolderRoot])
	assert.Equal(t, result.Session.LogonTime, result.LogonTime)
	assert.Equal(t, uint32(0), result.StoreState)
	assert.Equal(t, 1, f.sessions.Count())

	require.NoError(t, f.resolver.Logoff(result.Session.ID))
	assert.Equal(t, 0, f.sessions.Count())
	assert.Equal(t, []string{"success"}, f.metrics.outcomes)
}

func TestDelegateAndAdminLogon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.ModernBehavior(), nil)

	result, err := f.resolver.Logon(ctx, Request{UserDN: bobDN, Flags: FlagPrivate, OpenFlags: privateOpen, MailboxDN: aliceDN})
	require.NoError(t, err)
	assert.Equal(t, ResponseReserved|ResponseSendAsRight, result.ResponseFlags)
	assert.Equal(t, aliceDN, result.Session.Mailbox.LegacyDN)
	assert.Equal(t, bobDN, result.Session.UserDN)

	_, err = f.resolver.Logon(ctx, Request{UserDN: carolDN, Flags: FlagPrivate, OpenFlags: privateOpen, MailboxDN: aliceDN})
	assert.True(t, store.HasCode(err, store.ErrLoginPermission))

	result, err = f.resolver.Logon(ctx, Request{UserDN: carolDN, Flags: FlagPrivate, OpenFlags: privateOpen | OpenUseAdminPrivilege, MailboxDN: aliceDN})
	require.NoError(t, err)
	assert.Equal(t, ResponseReserved, result.ResponseFlags)
}

func TestLogonFailures(t *testing.T) {
	tests := []struct {
		name     string
		behavior service.Behavior
		req      Request
		code     store.ErrorCode
		server   string
	}{
		{
			name:     "unknown user",
			behavior: service.ModernBehavior(),
			req:      Request{UserDN: "/o=Test/ou=Users/cn=nobody", Flags: FlagPrivate, OpenFlags: privateOpen},
			code:     store.ErrUnknownUser,
		},
		{
			name:     "unknown mailbox",
			behavior: service.ModernBehavior(),
			req:      Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: privateOpen, MailboxDN: "/o=Test/ou=Users/cn=nobody"},
			code:     store.ErrUnknownUser,
		},
		{
			name:     "missing per-MDB mapping modern",
			behavior: service.ModernBehavior(),
			req:      Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: OpenHomeLogon},
			code:     store.ErrInvalidParameter,
		},
		{
			name:     "missing per-MDB mapping legacy",
			behavior: service.LegacyBehavior(),
			req:      Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: OpenHomeLogon},
			code:     store.ErrWrongServer,
			server:   localServer,
		},
		{
			name:     "mailbox homed elsewhere",
			behavior: service.ModernBehavior(),
			req:      Request{UserDN: daveDN, Flags: FlagPrivate, OpenFlags: privateOpen},
			code:     store.ErrWrongServer,
			server:   remoteServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.behavior, nil)

			_, err := f.resolver.Logon(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, store.HasCode(err, tt.code), "got %v", err)

			if tt.server != "" {
				var se *store.StoreError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.server, se.Server)
			}
			assert.Equal(t, 0, f.sessions.Count())
			assert.Equal(t, []string{tt.code.String()}, f.metrics.outcomes)
		})
	}
}

func TestIgnoreHomeMDB(t *testing.T) {
	f := newFixture(t, service.ModernBehavior(), nil)

	result, err := f.resolver.Logon(context.Background(), Request{
		UserDN:    daveDN,
		Flags:     FlagPrivate,
		OpenFlags: privateOpen | OpenIgnoreHomeMDB,
	})
	require.NoError(t, err)
	assert.Equal(t, "mdb02", result.Session.Database.Name)
}

func TestPublicLogon(t *testing.T) {
	f := newFixture(t, service.ModernBehavior(), nil)

	result, err := f.resolver.Logon(context.Background(), Request{UserDN: carolDN, OpenFlags: OpenPublic})
	require.NoError(t, err)

	db, err := f.registry.GetDatabase("pf01")
	require.NoError(t, err)

	assert.False(t, result.Session.IsPrivate())
	assert.Equal(t, db.ReplGUID, result.ReplGUID)
	assert.Equal(t, store.NewID(store.LocalReplID, 100), result.FolderIDs[0])
	assert.Equal(t, store.NewID(store.LocalReplID, 101), result.FolderIDs[1])
	assert.Equal(t, store.NewID(store.LocalReplID, 102), result.FolderIDs[2])
	assert.Equal(t, store.NewID(store.LocalReplID, 4), result.FolderIDs[3])
	assert.True(t, result.FolderIDs[FolderCount-1].IsZero())
}

func TestLogonThrottle(t *testing.T) {
	throttle, err := ratelimiter.New(1, 1, 0)
	require.NoError(t, err)
	f := newFixture(t, service.ModernBehavior(), throttle)
	ctx := context.Background()

	_, err = f.resolver.Logon(ctx, Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: privateOpen})
	require.NoError(t, err)

	_, err = f.resolver.Logon(ctx, Request{UserDN: aliceDN, Flags: FlagPrivate, OpenFlags: privateOpen})
	assert.True(t, store.HasCode(err, store.ErrServerPaused))

	// other users keep their own bucket
	_, err = f.resolver.Logon(ctx, Request{UserDN: bobDN, Flags: FlagPrivate, OpenFlags: privateOpen})
	require.NoError(t, err)
}
