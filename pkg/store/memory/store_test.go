package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
	storetesting "github.com/marmos91/dittostore/pkg/store/testing"
)

func TestMemoryMetadataStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func() store.MetadataStore {
			return NewMemoryMetadataStoreWithDefaults()
		},
	}
	suite.Run(t)
}

func TestMemoryMetadataStore_ReplIDExhaustion(t *testing.T) {
	s := NewMemoryMetadataStore(MemoryMetadataStoreConfig{MaxReplID: 3})
	ctx := context.Background()

	db := storetesting.NewTestDatabase("mdb", store.DatabaseMailbox)
	require.NoError(t, s.CreateDatabase(ctx, db))

	for want := store.ReplID(2); want <= 3; want++ {
		id, err := s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	_, err := s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
	assert.True(t, store.HasCode(err, store.ErrGeneric))

	// known guids still resolve after exhaustion
	id, err := s.ReplIDFromGUID(ctx, db.GUID, db.ReplGUID)
	require.NoError(t, err)
	assert.Equal(t, store.LocalReplID, id)
}

func TestMemoryMetadataStore_Closed(t *testing.T) {
	s := NewMemoryMetadataStoreWithDefaults()
	require.NoError(t, s.Close())

	err := s.Healthcheck(context.Background())
	require.Error(t, err)
	assert.True(t, Error.Has(err))

	_, err = s.ListDatabases(context.Background())
	require.Error(t, err)
}
