package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/session"
	"github.com/marmos91/dittostore/pkg/store"
	"github.com/marmos91/dittostore/pkg/store/memory"
	storetesting "github.com/marmos91/dittostore/pkg/store/testing"
)

const localServer = "/o=Test/ou=Servers/cn=local"

type fixture struct {
	store    store.MetadataStore
	mdb      *store.Database
	pfdb     *store.Database
	mailbox  *store.Mailbox
	svc      *Service
	sessions *session.Manager
}

func newFixture(t *testing.T, behavior Behavior) *fixture {
	t.Helper()
	ctx := context.Background()

	s := memory.NewMemoryMetadataStoreWithDefaults()
	t.Cleanup(func() { _ = s.Close() })

	mdb := storetesting.NewTestDatabase("mdb", store.DatabaseMailbox)
	require.NoError(t, s.CreateDatabase(ctx, mdb))
	pfdb := storetesting.NewTestDatabase("pf", store.DatabasePublicFolders)
	require.NoError(t, s.CreateDatabase(ctx, pfdb))

	mbx := storetesting.NewTestMailbox(mdb, "/o=Test/ou=Users/cn=alice")
	require.NoError(t, s.CreateMailbox(ctx, mbx))

	svc := New(Config{Behavior: behavior, LocalServer: localServer})
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	return &fixture{
		store:    s,
		mdb:      mdb,
		pfdb:     pfdb,
		mailbox:  mbx,
		svc:      svc,
		sessions: session.NewManager(nil),
	}
}

func (f *fixture) privateSession() *session.Session {
	return f.sessions.Open(&session.Session{
		Kind:     session.KindPrivateMailbox,
		Database: f.mdb,
		Store:    f.store,
		Mailbox:  f.mailbox,
		UserDN:   f.mailbox.LegacyDN,
		Owner:    true,
	})
}

func (f *fixture) publicSession(userDN string) *session.Session {
	return f.sessions.Open(&session.Session{
		Kind:     session.KindPublicFolders,
		Database: f.pfdb,
		Store:    f.store,
		UserDN:   userDN,
	})
}

func foreignLTID(counter uint64) store.LongTermID {
	return store.LongTermID{ReplGUID: uuid.New(), GlobalCounter: counter}
}
