package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
)

func (suite *StoreTestSuite) RunDirectoryTests(test *testing.T) {
	test.Run("CreateDatabase_Success", suite.TestCreateDatabase_Success)
	test.Run("CreateDatabase_Idempotent", suite.TestCreateDatabase_Idempotent)
	test.Run("CreateDatabase_RequiresGUIDs", suite.TestCreateDatabase_RequiresGUIDs)
	test.Run("GetDatabase_NotFound", suite.TestGetDatabase_NotFound)
	test.Run("CreateMailbox_Success", suite.TestCreateMailbox_Success)
	test.Run("CreateMailbox_UnknownDatabase", suite.TestCreateMailbox_UnknownDatabase)
	test.Run("CreateMailbox_DuplicateDN", suite.TestCreateMailbox_DuplicateDN)
	test.Run("FindMailbox_CaseInsensitive", suite.TestFindMailbox_CaseInsensitive)
	test.Run("FindMailbox_NotFound", suite.TestFindMailbox_NotFound)
}

func (suite *StoreTestSuite) TestCreateDatabase_Success(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()
	ctx := context.Background()

	db1 := NewTestDatabase("a", store.DatabaseMailbox)
	db2 := NewTestDatabase("b", store.DatabasePublicFolders)
	require.NoError(test, s.CreateDatabase(ctx, db1))
	require.NoError(test, s.CreateDatabase(ctx, db2))

	got, err := s.GetDatabase(ctx, db2.GUID)
	require.NoError(test, err)
	assert.Equal(test, db2, got)

	all, err := s.ListDatabases(ctx)
	require.NoError(test, err)
	require.Len(test, all, 2)
	assert.Equal(test, "a", all[0].Name)
	assert.Equal(test, "b", all[1].Name)
}

// TestCreateDatabase_Idempotent verifies re-provisioning keeps the original
// record and identifier map.
func (suite *StoreTestSuite) TestCreateDatabase_Idempotent(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()
	ctx := context.Background()

	db := NewTestDatabase("a", store.DatabaseMailbox)
	require.NoError(test, s.CreateDatabase(ctx, db))

	other := uuid.New()
	id, err := s.ReplIDFromGUID(ctx, db.GUID, other)
	require.NoError(test, err)

	again := *db
	again.Name = "renamed"
	require.NoError(test, s.CreateDatabase(ctx, &again))

	got, err := s.GetDatabase(ctx, db.GUID)
	require.NoError(test, err)
	assert.Equal(test, "a", got.Name)

	guid, err := s.ReplGUIDFromID(ctx, db.GUID, id)
	require.NoError(test, err)
	assert.Equal(test, other, guid)
}

func (suite *StoreTestSuite) TestCreateDatabase_RequiresGUIDs(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()
	ctx := context.Background()

	err := s.CreateDatabase(ctx, &store.Database{Name: "x", ReplGUID: uuid.New()})
	assert.True(test, store.HasCode(err, store.ErrInvalidParameter))

	err = s.CreateDatabase(ctx, &store.Database{Name: "x", GUID: uuid.New()})
	assert.True(test, store.HasCode(err, store.ErrInvalidParameter))
}

func (suite *StoreTestSuite) TestGetDatabase_NotFound(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()

	_, err := s.GetDatabase(context.Background(), uuid.New())
	assert.True(test, store.IsNotFound(err))
}

func (suite *StoreTestSuite) TestCreateMailbox_Success(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	got, err := s.GetMailbox(ctx, mbx.GUID)
	require.NoError(test, err)
	assert.Equal(test, mbx.LegacyDN, got.LegacyDN)
	assert.Equal(test, mbx.SpecialFolders, got.SpecialFolders)
	assert.True(test, mbx.CreatedAt.Equal(got.CreatedAt))

	rows, err := s.ListReceiveFolders(ctx, mbx.GUID)
	require.NoError(test, err)
	classes := make([]string, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.MessageClass)
	}
	assert.Equal(test, []string{"", "IPC", "IPM", "REPORT.IPM"}, classes)
}

func (suite *StoreTestSuite) TestCreateMailbox_UnknownDatabase(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()

	db := NewTestDatabase("missing", store.DatabaseMailbox)
	err := s.CreateMailbox(context.Background(), NewTestMailbox(db, "/cn=bob"))
	assert.True(test, store.IsNotFound(err))
}

func (suite *StoreTestSuite) TestCreateMailbox_DuplicateDN(test *testing.T) {
	s, db, mbx := suite.setupMailbox(test)

	dup := NewTestMailbox(db, mbx.LegacyDN)
	err := s.CreateMailbox(context.Background(), dup)
	assert.True(test, store.HasCode(err, store.ErrInvalidParameter))
}

func (suite *StoreTestSuite) TestFindMailbox_CaseInsensitive(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)

	got, err := s.FindMailbox(context.Background(), "/O=TEST/OU=USERS/CN=ALICE")
	require.NoError(test, err)
	assert.Equal(test, mbx.GUID, got.GUID)
}

func (suite *StoreTestSuite) TestFindMailbox_NotFound(test *testing.T) {
	s, _, _ := suite.setupMailbox(test)

	_, err := s.FindMailbox(context.Background(), "/cn=nobody")
	assert.True(test, store.IsNotFound(err))
}
