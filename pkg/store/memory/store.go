package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/errs"

	"github.com/marmos91/dittostore/pkg/store"
)

// Error is the class of infrastructure errors raised by the memory store.
var Error = errs.Class("memory store")

// identifierMap is the in-memory IdentifierMap of one database.
type identifierMap struct {
	byID   map[store.ReplID]store.ReplGUID
	byGUID map[store.ReplGUID]store.ReplID
	next   store.ReplID
}

// MemoryMetadataStore implements store.MetadataStore using in-memory maps.
//
// It is intended for tests, development and ephemeral deployments. Nothing
// survives a restart.
//
// Thread Safety:
// All operations are protected by a single read-write mutex (mu). REPLID
// allocation runs under the write lock, which makes the check-then-insert
// sequence linearizable without any extra per-database locking.
//
// Storage Model:
//  1. databases / mailboxes: directory objects keyed by GUID
//  2. mailboxesByDN: lower-cased legacy DN to mailbox GUID
//  3. idmaps: one identifierMap per database
//  4. receiveFolders: mailbox GUID -> folded message class -> row
//  5. perUser: normalized PerUserKey -> row
//  6. publicFolders: database GUID -> long term id -> replica record
//
// Values are copied on the way in and on the way out so callers never share
// memory with the store.
type MemoryMetadataStore struct {
	// mu protects all fields in this struct for concurrent access.
	mu sync.RWMutex

	databases      map[uuid.UUID]*store.Database
	mailboxes      map[uuid.UUID]*store.Mailbox
	mailboxesByDN  map[string]uuid.UUID
	idmaps         map[uuid.UUID]*identifierMap
	receiveFolders map[uuid.UUID]map[string]store.ReceiveFolderRow
	perUser        map[store.PerUserKey]store.PerUserInfo
	publicFolders  map[uuid.UUID]map[store.LongTermID]*store.PublicFolder

	maxReplID store.ReplID
	closed    bool
}

// MemoryMetadataStoreConfig configures the in-memory store.
type MemoryMetadataStoreConfig struct {
	// MaxReplID caps REPLID allocation. Zero means store.MaxReplID.
	// Lowering it is only useful to exercise exhaustion in tests.
	MaxReplID uint16 `mapstructure:"max_repl_id"`
}

// NewMemoryMetadataStore creates an empty in-memory store.
func NewMemoryMetadataStore(config MemoryMetadataStoreConfig) *MemoryMetadataStore {
	s := NewMemoryMetadataStoreWithDefaults()
	s.maxReplID = store.MaxReplID
	if config.MaxReplID != 0 {
		s.maxReplID = store.ReplID(config.MaxReplID)
	}
	return s
}

// NewMemoryMetadataStoreWithDefaults creates an empty store with default limits.
func NewMemoryMetadataStoreWithDefaults() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		databases:      make(map[uuid.UUID]*store.Database),
		mailboxes:      make(map[uuid.UUID]*store.Mailbox),
		mailboxesByDN:  make(map[string]uuid.UUID),
		idmaps:         make(map[uuid.UUID]*identifierMap),
		receiveFolders: make(map[uuid.UUID]map[string]store.ReceiveFolderRow),
		perUser:        make(map[store.PerUserKey]store.PerUserInfo),
		publicFolders:  make(map[uuid.UUID]map[store.LongTermID]*store.PublicFolder),
		maxReplID:      store.MaxReplID,
	}
}

// Healthcheck reports an error once the store has been closed.
func (s *MemoryMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Error.New("store is closed")
	}
	return nil
}

// Close marks the store closed. Data is kept so Close is idempotent.
func (s *MemoryMetadataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// check verifies the context and the closed flag. Callers hold mu.
func (s *MemoryMetadataStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return Error.New("store is closed")
	}
	return nil
}

var _ store.MetadataStore = (*MemoryMetadataStore)(nil)
