package badger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
	storetesting "github.com/marmos91/dittostore/pkg/store/testing"
)

func newInMemoryStore(t *testing.T, config BadgerMetadataStoreConfig) *BadgerMetadataStore {
	t.Helper()
	config.InMemory = true
	s, err := NewBadgerMetadataStore(context.Background(), config)
	require.NoError(t, err)
	return s
}

func TestBadgerMetadataStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func() store.MetadataStore {
			return newInMemoryStore(t, BadgerMetadataStoreConfig{})
		},
	}
	suite.Run(t)
}

func TestBadgerMetadataStore_ReplIDExhaustion(t *testing.T) {
	s := newInMemoryStore(t, BadgerMetadataStoreConfig{MaxReplID: 2})
	defer s.Close()
	ctx := context.Background()

	db := storetesting.NewTestDatabase("mdb", store.DatabaseMailbox)
	require.NoError(t, s.CreateDatabase(ctx, db))

	id, err := s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, store.ReplID(2), id)

	_, err = s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
	assert.True(t, store.HasCode(err, store.ErrGeneric))
}

// TestBadgerMetadataStore_Persistence verifies identifier maps and rows
// survive reopening the database.
func TestBadgerMetadataStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewBadgerMetadataStoreWithDefaults(ctx, dir)
	require.NoError(t, err)

	db := storetesting.NewTestDatabase("mdb", store.DatabaseMailbox)
	require.NoError(t, s.CreateDatabase(ctx, db))
	mbx := storetesting.NewTestMailbox(db, "/cn=alice")
	require.NoError(t, s.CreateMailbox(ctx, mbx))

	foreign := uuid.New()
	id, err := s.ReplIDFromGUID(ctx, db.GUID, foreign)
	require.NoError(t, err)

	key := store.PerUserKey{Owner: store.OwnerMailbox, Scope: mbx.GUID,
		Folder: store.LongTermID{ReplGUID: foreign, GlobalCounter: 5}}
	require.NoError(t, s.PutPerUserInfo(ctx, key, &store.PerUserInfo{Data: []byte("state"), ReplGUID: foreign}))
	require.NoError(t, s.Close())

	s, err = NewBadgerMetadataStoreWithDefaults(ctx, dir)
	require.NoError(t, err)
	defer s.Close()

	guid, err := s.ReplGUIDFromID(ctx, db.GUID, id)
	require.NoError(t, err)
	assert.Equal(t, foreign, guid)

	next, err := s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, id+1, next)

	info, err := s.GetPerUserInfo(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []byte("state"), info.Data)

	found, err := s.FindMailbox(ctx, "/CN=ALICE")
	require.NoError(t, err)
	assert.Equal(t, mbx.GUID, found.GUID)
}

func TestBadgerMetadataStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerMetadataStore(context.Background(), BadgerMetadataStoreConfig{})
	require.Error(t, err)
	assert.True(t, Error.Has(err))
}
