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

func (suite *StoreTestSuite) RunReceiveFolderTests(test *testing.T) {
	test.Run("PutInsertsRow", suite.TestReceiveFolder_PutInsertsRow)
	test.Run("PutReplacesCaseInsensitive", suite.TestReceiveFolder_PutReplacesCaseInsensitive)
	test.Run("Delete", suite.TestReceiveFolder_Delete)
	test.Run("DeleteMissingIsNoop", suite.TestReceiveFolder_DeleteMissingIsNoop)
	test.Run("UnknownMailbox", suite.TestReceiveFolder_UnknownMailbox)
}

func (suite *StoreTestSuite) TestReceiveFolder_PutInsertsRow(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	row := store.ReceiveFolderRow{
		MessageClass: "IPM.Note",
		FolderID:     store.NewID(1, 100),
		LastModified: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(test, s.PutReceiveFolder(ctx, mbx.GUID, row))

	rows, err := s.ListReceiveFolders(ctx, mbx.GUID)
	require.NoError(test, err)
	require.Len(test, rows, 5)

	var found bool
	for _, r := range rows {
		if r.MessageClass == "IPM.Note" {
			found = true
			assert.Equal(test, row.FolderID, r.FolderID)
			assert.True(test, row.LastModified.Equal(r.LastModified))
		}
	}
	assert.True(test, found)
}

// TestReceiveFolder_PutReplacesCaseInsensitive verifies one row per class
// regardless of case, keeping the latest stored spelling.
func (suite *StoreTestSuite) TestReceiveFolder_PutReplacesCaseInsensitive(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	require.NoError(test, s.PutReceiveFolder(ctx, mbx.GUID, store.ReceiveFolderRow{
		MessageClass: "IPM.Note", FolderID: store.NewID(1, 100),
	}))
	require.NoError(test, s.PutReceiveFolder(ctx, mbx.GUID, store.ReceiveFolderRow{
		MessageClass: "ipm.NOTE", FolderID: store.NewID(1, 200),
	}))

	rows, err := s.ListReceiveFolders(ctx, mbx.GUID)
	require.NoError(test, err)
	require.Len(test, rows, 5)

	for _, r := range rows {
		if store.FoldClass(r.MessageClass) == "IPM.NOTE" {
			assert.Equal(test, "ipm.NOTE", r.MessageClass)
			assert.Equal(test, store.NewID(1, 200), r.FolderID)
		}
	}
}

func (suite *StoreTestSuite) TestReceiveFolder_Delete(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)
	ctx := context.Background()

	require.NoError(test, s.PutReceiveFolder(ctx, mbx.GUID, store.ReceiveFolderRow{
		MessageClass: "IPM.Note", FolderID: store.NewID(1, 100),
	}))
	require.NoError(test, s.DeleteReceiveFolder(ctx, mbx.GUID, "IPM.NOTE"))

	rows, err := s.ListReceiveFolders(ctx, mbx.GUID)
	require.NoError(test, err)
	assert.Len(test, rows, 4)
}

func (suite *StoreTestSuite) TestReceiveFolder_DeleteMissingIsNoop(test *testing.T) {
	s, _, mbx := suite.setupMailbox(test)

	require.NoError(test, s.DeleteReceiveFolder(context.Background(), mbx.GUID, "IPM.Missing"))
}

func (suite *StoreTestSuite) TestReceiveFolder_UnknownMailbox(test *testing.T) {
	s, _, _ := suite.setupMailbox(test)
	ctx := context.Background()

	_, err := s.ListReceiveFolders(ctx, uuid.New())
	assert.True(test, store.IsNotFound(err))

	err = s.PutReceiveFolder(ctx, uuid.New(), store.ReceiveFolderRow{MessageClass: "X"})
	assert.True(test, store.IsNotFound(err))
}
