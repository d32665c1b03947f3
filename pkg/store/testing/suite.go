// Package testing provides a conformance suite that every MetadataStore
// backend runs from its own tests.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
)

// StoreTestSuite runs backend-agnostic tests against a MetadataStore.
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh MetadataStore
	// instance for each test. This ensures test isolation.
	NewStore func() store.MetadataStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(test *testing.T) {
	test.Run("Directory", suite.RunDirectoryTests)
	test.Run("IdentifierMap", suite.RunIdentifierMapTests)
	test.Run("ReceiveFolders", suite.RunReceiveFolderTests)
	test.Run("PerUserInfo", suite.RunPerUserTests)
	test.Run("PublicFolders", suite.RunPublicFolderTests)
	test.Run("Healthcheck", suite.TestHealthcheck)
}

// TestHealthcheck verifies a fresh store reports healthy.
func (suite *StoreTestSuite) TestHealthcheck(test *testing.T) {
	s := suite.NewStore()
	defer s.Close()

	require.NoError(test, s.Healthcheck(context.Background()))
}

// NewTestDatabase returns a database fixture with random GUIDs.
func NewTestDatabase(name string, kind store.DatabaseKind) *store.Database {
	return &store.Database{
		GUID:     uuid.New(),
		ReplGUID: uuid.New(),
		Name:     name,
		Kind:     kind,
		Server:   "/o=Test/ou=Servers/cn=local",
	}
}

// NewTestMailbox returns a mailbox fixture homed on db with special folder
// ids allocated from the database's local replica.
func NewTestMailbox(db *store.Database, legacyDN string) *store.Mailbox {
	mbx := &store.Mailbox{
		GUID:         uuid.New(),
		LegacyDN:     legacyDN,
		DisplayName:  legacyDN,
		DatabaseGUID: db.GUID,
		ReplGUID:     db.ReplGUID,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := range mbx.SpecialFolders {
		mbx.SpecialFolders[i] = store.NewID(store.LocalReplID, uint64(i+1))
	}
	return mbx
}

// setupMailbox creates a store with one mailbox database and one mailbox.
func (suite *StoreTestSuite) setupMailbox(test *testing.T) (store.MetadataStore, *store.Database, *store.Mailbox) {
	test.Helper()
	ctx := context.Background()

	s := suite.NewStore()
	test.Cleanup(func() { _ = s.Close() })

	db := NewTestDatabase("mdb1", store.DatabaseMailbox)
	require.NoError(test, s.CreateDatabase(ctx, db))

	mbx := NewTestMailbox(db, "/o=Test/ou=Users/cn=alice")
	require.NoError(test, s.CreateMailbox(ctx, mbx))
	return s, db, mbx
}
