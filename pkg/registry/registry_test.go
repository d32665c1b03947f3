package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
	"github.com/marmos91/dittostore/pkg/store/memory"
)

const (
	localServer  = "/o=Test/ou=Servers/cn=local"
	remoteServer = "/o=Test/ou=Servers/cn=remote"
	aliceDN      = "/o=Test/ou=First/cn=Recipients/cn=alice"
	bobDN        = "/o=Test/ou=First/cn=Recipients/cn=bob"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	ctx := context.Background()

	r := NewRegistry(localServer)
	require.NoError(t, r.RegisterStore("default", memory.NewMemoryMetadataStoreWithDefaults()))

	_, err := r.AddDatabase(ctx, &DatabaseConfig{Name: "mdb01", Kind: store.DatabaseMailbox, Store: "default"})
	require.NoError(t, err)
	_, err = r.AddDatabase(ctx, &DatabaseConfig{Name: "pf01", Kind: store.DatabasePublicFolders, Store: "default"})
	require.NoError(t, err)
	return r
}

func TestRegisterStore(t *testing.T) {
	r := NewRegistry(localServer)

	require.NoError(t, r.RegisterStore("a", memory.NewMemoryMetadataStoreWithDefaults()))
	assert.Error(t, r.RegisterStore("a", memory.NewMemoryMetadataStoreWithDefaults()))
	assert.Error(t, r.RegisterStore("", memory.NewMemoryMetadataStoreWithDefaults()))
	assert.Error(t, r.RegisterStore("b", nil))

	_, err := r.GetStore("missing")
	assert.Error(t, err)
}

func TestAddDatabase(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	db, err := r.GetDatabase("mdb01")
	require.NoError(t, err)
	assert.Equal(t, DatabaseGUID("mdb01"), db.GUID)
	assert.Equal(t, DatabaseReplGUID("mdb01"), db.ReplGUID)
	assert.Equal(t, localServer, db.Server)

	byGUID, err := r.FindDatabase(db.GUID)
	require.NoError(t, err)
	assert.Same(t, db, byGUID)

	replGUID, err := db.Store.ReplGUIDFromID(ctx, db.GUID, store.LocalReplID)
	require.NoError(t, err)
	assert.Equal(t, db.ReplGUID, replGUID)

	_, err = r.AddDatabase(ctx, &DatabaseConfig{Name: "mdb01", Kind: store.DatabaseMailbox, Store: "default"})
	assert.Error(t, err)

	_, err = r.AddDatabase(ctx, &DatabaseConfig{Name: "mdb02", Kind: store.DatabaseMailbox, Store: "missing"})
	assert.Error(t, err)

	_, err = r.GetDatabase("nope")
	assert.True(t, store.IsNotFound(err))

	names := []string{}
	for _, d := range r.ListDatabases() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"mdb01", "pf01"}, names)
}

func TestPublicFolderDatabase(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry(localServer)
	require.NoError(t, r.RegisterStore("default", memory.NewMemoryMetadataStoreWithDefaults()))

	_, err := r.PublicFolderDatabase()
	assert.True(t, store.IsNotFound(err))

	_, err = r.AddDatabase(ctx, &DatabaseConfig{Name: "pf-a", Kind: store.DatabasePublicFolders, Store: "default", Server: remoteServer})
	require.NoError(t, err)

	db, err := r.PublicFolderDatabase()
	require.NoError(t, err)
	assert.Equal(t, "pf-a", db.Name)

	_, err = r.AddDatabase(ctx, &DatabaseConfig{Name: "pf-b", Kind: store.DatabasePublicFolders, Store: "default"})
	require.NoError(t, err)

	db, err = r.PublicFolderDatabase()
	require.NoError(t, err)
	assert.Equal(t, "pf-b", db.Name)
}

func TestAddAndFindMailbox(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	mbx, err := r.AddMailbox(ctx, &MailboxConfig{LegacyDN: aliceDN, DisplayName: "Alice", Database: "mdb01", Delegates: []string{bobDN}})
	require.NoError(t, err)
	assert.Equal(t, MailboxGUID(aliceDN), mbx.GUID)
	assert.Equal(t, store.NewID(store.LocalReplID, 1), mbx.SpecialFolders[store.FolderRoot])
	assert.Equal(t, store.NewID(store.LocalReplID, uint64(store.FolderInbox)+1), mbx.SpecialFolders[store.FolderInbox])

	found, db, err := r.FindMailbox(ctx, "/O=TEST/OU=FIRST/CN=RECIPIENTS/CN=ALICE")
	require.NoError(t, err)
	assert.Equal(t, mbx.GUID, found.GUID)
	assert.Equal(t, "mdb01", db.Name)

	_, _, err = r.FindMailbox(ctx, bobDN)
	assert.True(t, store.IsNotFound(err))

	_, err = r.AddMailbox(ctx, &MailboxConfig{LegacyDN: bobDN, Database: "pf01"})
	assert.Error(t, err)
}

func TestAddPublicFolder(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	folder, err := r.AddPublicFolder(ctx, &PublicFolderConfig{
		Database:      "pf01",
		DisplayName:   "Announcements",
		GlobalCounter: 42,
		Replicas:      []string{localServer, remoteServer},
	})
	require.NoError(t, err)

	db, err := r.GetDatabase("pf01")
	require.NoError(t, err)

	stored, err := db.Store.GetPublicFolder(ctx, db.GUID, folder.LongTermID)
	require.NoError(t, err)
	assert.Equal(t, "Announcements", stored.DisplayName)
	assert.True(t, stored.HasReplicaOn(remoteServer))

	_, err = r.AddPublicFolder(ctx, &PublicFolderConfig{Database: "pf01", DisplayName: "zero"})
	assert.Error(t, err)

	_, err = r.AddPublicFolder(ctx, &PublicFolderConfig{Database: "mdb01", DisplayName: "wrong", GlobalCounter: 1})
	assert.Error(t, err)
}

func TestResolveAccess(t *testing.T) {
	mbx := &store.Mailbox{LegacyDN: aliceDN, Delegates: []string{bobDN}}
	carol := "/o=Test/ou=First/cn=Recipients/cn=carol"

	tests := []struct {
		name     string
		user     string
		admin    bool
		expected Access
		denied   bool
	}{
		{name: "owner", user: aliceDN, expected: Access{Owner: true, SendAs: true}},
		{name: "owner case insensitive", user: "/O=test/OU=first/CN=Recipients/cn=ALICE", expected: Access{Owner: true, SendAs: true}},
		{name: "delegate", user: bobDN, expected: Access{SendAs: true}},
		{name: "admin", user: carol, admin: true, expected: Access{Admin: true}},
		{name: "denied", user: carol, denied: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, err := ResolveAccess(tt.user, mbx, tt.admin)
			if tt.denied {
				assert.True(t, store.HasCode(err, store.ErrLoginPermission))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, access)
		})
	}
}

func TestHealthcheckAndClose(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)

	require.NoError(t, r.Healthcheck(ctx))
	require.NoError(t, r.Close())
	assert.Error(t, r.Healthcheck(ctx))
}
