package store

import (
	"context"

	"github.com/google/uuid"
)

// ============================================================================
// MetadataStore Interface
// ============================================================================

// MetadataStore persists the state behind the store metadata service.
//
// The store owns four kinds of data, each scoped to a database or mailbox:
//   - IdentifierMap: per database REPLID <-> REPLGUID bijection
//   - Receive folder rows: per mailbox message class routing
//   - Per-user information rows: opaque BLOBs keyed by owner, scope and folder
//   - Public folder replica records: per public folder database
//
// Directory objects (databases, mailboxes) live here as well so a single
// backend can be pointed at by a registry entry.
//
// The store keeps no session state. Chunked write progress, session kind and
// variant behavior belong to the service layer.
//
// Error handling:
//   - Missing objects return a *StoreError with ErrNotFound
//   - GetPerUserInfo returns (nil, nil) when the row does not exist yet
//   - Backend failures are returned as plain errors (reported as ErrIOError)
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type MetadataStore interface {
	// ========================================================================
	// Directory
	// ========================================================================

	// CreateDatabase registers a database and seeds its IdentifierMap with
	// the database's own REPLGUID at LocalReplID.
	//
	// Creating a database that already exists with the same GUID is a no-op
	// so provisioning can be repeated on restart.
	CreateDatabase(ctx context.Context, db *Database) error

	// GetDatabase returns the database with the given GUID.
	GetDatabase(ctx context.Context, guid uuid.UUID) (*Database, error)

	// ListDatabases returns every database known to the store.
	ListDatabases(ctx context.Context) ([]*Database, error)

	// CreateMailbox registers a mailbox and seeds its receive folder table.
	//
	// The mailbox's database must exist. Creating an existing mailbox is a
	// no-op and leaves its receive folder rows untouched.
	CreateMailbox(ctx context.Context, mbx *Mailbox) error

	// GetMailbox returns the mailbox with the given GUID.
	GetMailbox(ctx context.Context, guid uuid.UUID) (*Mailbox, error)

	// FindMailbox looks a mailbox up by legacy DN (case insensitive).
	FindMailbox(ctx context.Context, legacyDN string) (*Mailbox, error)

	// ========================================================================
	// IdentifierMap
	// ========================================================================

	// ReplIDFromGUID returns the REPLID mapped to guid in the database,
	// allocating the next free REPLID when guid has never been seen.
	//
	// Allocation is linearizable: concurrent first references to the same
	// guid observe the same REPLID. Allocation fails with ErrGeneric once
	// the 16-bit space is exhausted.
	ReplIDFromGUID(ctx context.Context, database uuid.UUID, guid ReplGUID) (ReplID, error)

	// ReplGUIDFromID returns the REPLGUID mapped to replID in the database.
	//
	// Returns ErrNotFound when replID has not been assigned.
	ReplGUIDFromID(ctx context.Context, database uuid.UUID, replID ReplID) (ReplGUID, error)

	// ListReplicaMappings returns all mappings of the database ordered by REPLID.
	ListReplicaMappings(ctx context.Context, database uuid.UUID) ([]ReplicaMapping, error)

	// ========================================================================
	// Receive folders
	// ========================================================================

	// ListReceiveFolders returns the receive folder rows of a mailbox,
	// ordered by upper-cased message class.
	ListReceiveFolders(ctx context.Context, mailbox uuid.UUID) ([]ReceiveFolderRow, error)

	// PutReceiveFolder inserts or replaces the row whose message class
	// matches row.MessageClass case insensitively.
	PutReceiveFolder(ctx context.Context, mailbox uuid.UUID, row ReceiveFolderRow) error

	// DeleteReceiveFolder removes the row for messageClass (case
	// insensitive). Deleting a missing row is not an error.
	DeleteReceiveFolder(ctx context.Context, mailbox uuid.UUID, messageClass string) error

	// ========================================================================
	// Per-user information
	// ========================================================================

	// GetPerUserInfo returns the row for key, or (nil, nil) when absent.
	GetPerUserInfo(ctx context.Context, key PerUserKey) (*PerUserInfo, error)

	// PutPerUserInfo atomically replaces the row for key.
	PutPerUserInfo(ctx context.Context, key PerUserKey, info *PerUserInfo) error

	// ListPerUserInfo returns every row with the given owner kind and scope.
	ListPerUserInfo(ctx context.Context, owner OwnerKind, scope uuid.UUID) ([]PerUserEntry, error)

	// ========================================================================
	// Public folder replicas
	// ========================================================================

	// PutPublicFolder inserts or replaces the replica record of a folder.
	PutPublicFolder(ctx context.Context, database uuid.UUID, folder *PublicFolder) error

	// GetPublicFolder returns the replica record of a folder.
	GetPublicFolder(ctx context.Context, database uuid.UUID, ltid LongTermID) (*PublicFolder, error)

	// ListPublicFolders returns all replica records of a database.
	ListPublicFolders(ctx context.Context, database uuid.UUID) ([]*PublicFolder, error)

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Healthcheck verifies the backend is operational.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
