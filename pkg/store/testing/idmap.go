package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/dittostore/pkg/store"
)

func (suite *StoreTestSuite) RunIdentifierMapTests(test *testing.T) {
	test.Run("LocalReplicaSeeded", suite.TestIdentifierMap_LocalReplicaSeeded)
	test.Run("AllocateSequential", suite.TestIdentifierMap_AllocateSequential)
	test.Run("AllocateIdempotent", suite.TestIdentifierMap_AllocateIdempotent)
	test.Run("UnknownReplID", suite.TestIdentifierMap_UnknownReplID)
	test.Run("UnknownDatabase", suite.TestIdentifierMap_UnknownDatabase)
	test.Run("DatabasesIndependent", suite.TestIdentifierMap_DatabasesIndependent)
	test.Run("ConcurrentFirstReference", suite.TestIdentifierMap_ConcurrentFirstReference)
	test.Run("ListMappings", suite.TestIdentifierMap_ListMappings)
}

func (suite *StoreTestSuite) TestIdentifierMap_LocalReplicaSeeded(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)
	ctx := context.Background()

	id, err := s.ReplIDFromGUID(ctx, db.GUID, db.ReplGUID)
	require.NoError(test, err)
	assert.Equal(test, store.LocalReplID, id)

	guid, err := s.ReplGUIDFromID(ctx, db.GUID, store.LocalReplID)
	require.NoError(test, err)
	assert.Equal(test, db.ReplGUID, guid)
}

func (suite *StoreTestSuite) TestIdentifierMap_AllocateSequential(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)
	ctx := context.Background()

	for want := store.ReplID(2); want < 6; want++ {
		id, err := s.ReplIDFromGUID(ctx, db.GUID, uuid.New())
		require.NoError(test, err)
		assert.Equal(test, want, id)
	}
}

func (suite *StoreTestSuite) TestIdentifierMap_AllocateIdempotent(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)
	ctx := context.Background()

	guid := uuid.New()
	first, err := s.ReplIDFromGUID(ctx, db.GUID, guid)
	require.NoError(test, err)

	second, err := s.ReplIDFromGUID(ctx, db.GUID, guid)
	require.NoError(test, err)
	assert.Equal(test, first, second)

	back, err := s.ReplGUIDFromID(ctx, db.GUID, first)
	require.NoError(test, err)
	assert.Equal(test, guid, back)
}

func (suite *StoreTestSuite) TestIdentifierMap_UnknownReplID(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)

	_, err := s.ReplGUIDFromID(context.Background(), db.GUID, 0x1234)
	assert.True(test, store.IsNotFound(err))

	_, err = s.ReplGUIDFromID(context.Background(), db.GUID, 0)
	assert.True(test, store.IsNotFound(err))
}

func (suite *StoreTestSuite) TestIdentifierMap_UnknownDatabase(test *testing.T) {
	s, _, _ := suite.setupMailbox(test)

	_, err := s.ReplIDFromGUID(context.Background(), uuid.New(), uuid.New())
	assert.True(test, store.IsNotFound(err))
}

// TestIdentifierMap_DatabasesIndependent verifies a REPLID is only meaningful
// inside the database that assigned it.
func (suite *StoreTestSuite) TestIdentifierMap_DatabasesIndependent(test *testing.T) {
	s, db1, _ := suite.setupMailbox(test)
	ctx := context.Background()

	db2 := NewTestDatabase("mdb2", store.DatabaseMailbox)
	require.NoError(test, s.CreateDatabase(ctx, db2))

	a, b := uuid.New(), uuid.New()
	_, err := s.ReplIDFromGUID(ctx, db1.GUID, a)
	require.NoError(test, err)

	idB, err := s.ReplIDFromGUID(ctx, db2.GUID, b)
	require.NoError(test, err)
	assert.Equal(test, store.ReplID(2), idB)

	guid, err := s.ReplGUIDFromID(ctx, db2.GUID, 2)
	require.NoError(test, err)
	assert.Equal(test, b, guid)
}

// TestIdentifierMap_ConcurrentFirstReference verifies concurrent callers
// resolving the same unseen REPLGUIDs agree on one REPLID each.
func (suite *StoreTestSuite) TestIdentifierMap_ConcurrentFirstReference(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)
	ctx := context.Background()

	guids := make([]uuid.UUID, 8)
	for i := range guids {
		guids[i] = uuid.New()
	}

	const workers = 16
	results := make([][]store.ReplID, workers)

	var group errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		results[w] = make([]store.ReplID, len(guids))
		group.Go(func() error {
			for i := range guids {
				// each worker walks the guids in a different order
				idx := (i + w) % len(guids)
				id, err := s.ReplIDFromGUID(ctx, db.GUID, guids[idx])
				if err != nil {
					return err
				}
				results[w][idx] = id
			}
			return nil
		})
	}
	require.NoError(test, group.Wait())

	seen := make(map[store.ReplID]bool)
	for i := range guids {
		id := results[0][i]
		for w := 1; w < workers; w++ {
			assert.Equal(test, id, results[w][i], "worker %d disagrees on guid %d", w, i)
		}
		assert.False(test, seen[id], "REPLID %d assigned twice", id)
		seen[id] = true
	}

	mappings, err := s.ListReplicaMappings(ctx, db.GUID)
	require.NoError(test, err)
	assert.Len(test, mappings, len(guids)+1)
}

func (suite *StoreTestSuite) TestIdentifierMap_ListMappings(test *testing.T) {
	s, db, _ := suite.setupMailbox(test)
	ctx := context.Background()

	other := uuid.New()
	_, err := s.ReplIDFromGUID(ctx, db.GUID, other)
	require.NoError(test, err)

	mappings, err := s.ListReplicaMappings(ctx, db.GUID)
	require.NoError(test, err)
	assert.Equal(test, []store.ReplicaMapping{
		{ReplID: 1, ReplGUID: db.ReplGUID},
		{ReplID: 2, ReplGUID: other},
	}, mappings)
}
