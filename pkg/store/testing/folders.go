package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
)

func (suite *StoreTestSuite) RunPublicFolderTests(test *testing.T) {
	test.Run("PutAndGet", suite.TestPublicFolder_PutAndGet)
	test.Run("NotFound", suite.TestPublicFolder_NotFound)
	test.Run("UnknownDatabase", suite.TestPublicFolder_UnknownDatabase)
	test.Run("List", suite.TestPublicFolder_List)
}

func (suite *StoreTestSuite) setupPublicDatabase(test *testing.T) (store.MetadataStore, *store.Database) {
	test.Helper()
	s := suite.NewStore()
	test.Cleanup(func() { _ = s.Close() })

	db := NewTestDatabase("pf", store.DatabasePublicFolders)
	require.NoError(test, s.CreateDatabase(context.Background(), db))
	return s, db
}

func (suite *StoreTestSuite) TestPublicFolder_PutAndGet(test *testing.T) {
	s, db := suite.setupPublicDatabase(test)
	ctx := context.Background()

	folder := &store.PublicFolder{
		LongTermID:  store.LongTermID{ReplGUID: db.ReplGUID, GlobalCounter: 42},
		DisplayName: "Projects",
		Role:        store.RoleGeneric,
		Replicas:    []string{"/cn=server1", "/cn=server2"},
	}
	require.NoError(test, s.PutPublicFolder(ctx, db.GUID, folder))

	got, err := s.GetPublicFolder(ctx, db.GUID, folder.LongTermID)
	require.NoError(test, err)
	assert.Equal(test, folder, got)

	folder.Replicas = []string{"/cn=server3"}
	require.NoError(test, s.PutPublicFolder(ctx, db.GUID, folder))

	got, err = s.GetPublicFolder(ctx, db.GUID, folder.LongTermID)
	require.NoError(test, err)
	assert.Equal(test, []string{"/cn=server3"}, got.Replicas)
}

func (suite *StoreTestSuite) TestPublicFolder_NotFound(test *testing.T) {
	s, db := suite.setupPublicDatabase(test)

	_, err := s.GetPublicFolder(context.Background(), db.GUID, store.LongTermID{ReplGUID: db.ReplGUID, GlobalCounter: 1})
	assert.True(test, store.IsNotFound(err))
}

func (suite *StoreTestSuite) TestPublicFolder_UnknownDatabase(test *testing.T) {
	s, _ := suite.setupPublicDatabase(test)

	err := s.PutPublicFolder(context.Background(), uuid.New(), &store.PublicFolder{})
	assert.True(test, store.IsNotFound(err))
}

func (suite *StoreTestSuite) TestPublicFolder_List(test *testing.T) {
	s, db := suite.setupPublicDatabase(test)
	ctx := context.Background()

	for _, counter := range []uint64{3, 1, 2} {
		require.NoError(test, s.PutPublicFolder(ctx, db.GUID, &store.PublicFolder{
			LongTermID: store.LongTermID{ReplGUID: db.ReplGUID, GlobalCounter: counter},
		}))
	}

	folders, err := s.ListPublicFolders(ctx, db.GUID)
	require.NoError(test, err)
	require.Len(test, folders, 3)
	for i, f := range folders {
		assert.Equal(test, uint64(i+1), f.LongTermID.GlobalCounter)
	}
}
