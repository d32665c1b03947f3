package testing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
)

func (suite *StoreTestSuite) RunPerUserTests(test *testing.T) {
	test.Run("MissingRowIsNil", suite.TestPerUser_MissingRowIsNil)
	test.Run("PutAndGet", suite.TestPerUser_PutAndGet)
	test.Run("PutReplaces", suite.TestPerUser_PutReplaces)
	test.Run("ReturnedDataIsCopy", suite.TestPerUser_ReturnedDataIsCopy)
	test.Run("PublicKeyUserCaseInsensitive", suite.TestPerUser_PublicKeyUserCaseInsensitive)
	test.Run("ListByScope", suite.TestPerUser_ListByScope)
}

func privateKey(mbx *store.Mailbox, counter uint64) store.PerUserKey {
	return store.PerUserKey{
		Owner:  store.OwnerMailbox,
		Scope:  mbx.GUID,
		Folder: store.LongTermID{ReplGUID: mbx.ReplGUID, GlobalCounter: counter},
	}
}

func (suite *StoreTestSuite) TestPerUser_MissingRowIsNil(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)

	info, err := s.GetPerUserInfo(context.Background(), privateKey(mbx, 10))
	require.NoError(test, err)
	assert.Nil(test, info)
}

func (suite *StoreTestSuite) TestPerUser_PutAndGet(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	want := &store.PerUserInfo{
		Data:         []byte{1, 2, 3, 4},
		ReplGUID:     uuid.New(),
		LastModified: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(test, s.PutPerUserInfo(ctx, privateKey(mbx, 10), want))

	got, err := s.GetPerUserInfo(ctx, privateKey(mbx, 10))
	require.NoError(test, err)
	require.NotNil(test, got)
	assert.Equal(test, want.Data, got.Data)
	assert.Equal(test, want.ReplGUID, got.ReplGUID)
	assert.True(test, want.LastModified.Equal(got.LastModified))

	other, err := s.GetPerUserInfo(ctx, privateKey(mbx, 11))
	require.NoError(test, err)
	assert.Nil(test, other)
}

func (suite *StoreTestSuite) TestPerUser_PutReplaces(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()
	key := privateKey(mbx, 10)

	require.NoError(test, s.PutPerUserInfo(ctx, key, &store.PerUserInfo{Data: []byte("old, longer value")}))
	require.NoError(test, s.PutPerUserInfo(ctx, key, &store.PerUserInfo{Data: []byte("new")}))

	got, err := s.GetPerUserInfo(ctx, key)
	require.NoError(test, err)
	assert.Equal(test, []byte("new"), got.Data)
}

func (suite *StoreTestSuite) TestPerUser_ReturnedDataIsCopy(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()
	key := privateKey(mbx, 10)

	data := []byte{9, 9, 9}
	require.NoError(test, s.PutPerUserInfo(ctx, key, &store.PerUserInfo{Data: data}))
	data[0] = 0

	got, err := s.GetPerUserInfo(ctx, key)
	require.NoError(test, err)
	got.Data[1] = 0

	again, err := s.GetPerUserInfo(ctx, key)
	require.NoError(test, err)
	assert.Equal(test, []byte{9, 9, 9}, again.Data)
}

func (suite *StoreTestSuite) TestPerUser_PublicKeyUserCaseInsensitive(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()
	ctx := context.Background()

	scope := uuid.New()
	folder := store.LongTermID{ReplGUID: uuid.New(), GlobalCounter: 7}
	key := store.PerUserKey{Owner: store.OwnerPublicFolders, Scope: scope, Folder: folder, User: "/cn=Alice"}

	require.NoError(test, s.PutPerUserInfo(ctx, key, &store.PerUserInfo{Data: []byte("x")}))

	key.User = "/CN=ALICE"
	got, err := s.GetPerUserInfo(ctx, key)
	require.NoError(test, err)
	require.NotNil(test, got)
	assert.Equal(test, []byte("x"), got.Data)

	key.User = "/cn=bob"
	got, err = s.GetPerUserInfo(ctx, key)
	require.NoError(test, err)
	assert.Nil(test, got)
}

func (suite *StoreTestSuite) TestPerUser_ListByScope(test *testing.T) {
	s, db, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	other := NewTestMailbox(db, "/cn=bob")
	require.NoError(test, s.CreateMailbox(ctx, other))

	require.NoError(test, s.PutPerUserInfo(ctx, privateKey(mbx, 2), &store.PerUserInfo{Data: []byte("b")}))
	require.NoError(test, s.PutPerUserInfo(ctx, privateKey(mbx, 1), &store.PerUserInfo{Data: []byte("a")}))
	require.NoError(test, s.PutPerUserInfo(ctx, privateKey(other, 1), &store.PerUserInfo{Data: []byte("z")}))

	entries, err := s.ListPerUserInfo(ctx, store.OwnerMailbox, mbx.GUID)
	require.NoError(test, err)
	require.Len(test, entries, 2)
	assert.Equal(test, uint64(1), entries[0].Key.Folder.GlobalCounter)
	assert.Equal(test, []byte("a"), entries[0].Info.Data)
	assert.Equal(test, uint64(2), entries[1].Key.Folder.GlobalCounter)

	none, err := s.ListPerUserInfo(ctx, store.OwnerPublicFolders, mbx.GUID)
	require.NoError(test, err)
	assert.Empty(test, none)
}
