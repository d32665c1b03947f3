package badger

import (
	"context"
	"errors"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/errs"

	"github.com/marmos91/dittostore/pkg/store"
)

// Error is the class of infrastructure errors raised by the badger store.
var Error = errs.Class("badger store")

const defaultIDCacheSize = 4096

type replIDKey struct {
	database uuid.UUID
	replID   store.ReplID
}

type replGUIDKey struct {
	database uuid.UUID
	guid     store.ReplGUID
}

// BadgerMetadataStore implements store.MetadataStore on top of BadgerDB.
//
// All rows are persisted, so identifier maps, receive folder tables and
// per-user information survive restarts. See keys.go for the key layout.
//
// REPLID <-> REPLGUID pairs never change once assigned, which makes them safe
// to cache. Two LRU caches front the identifier map lookups.
//
// Thread Safety:
// BadgerDB transactions provide isolation for single-row operations. REPLID
// allocation additionally holds a per-database mutex around its read-write
// transaction so concurrent first references never race into a conflict.
type BadgerMetadataStore struct {
	db *badger.DB

	maxReplID store.ReplID

	idCache   *lru.Cache[replIDKey, store.ReplGUID]
	guidCache *lru.Cache[replGUIDKey, store.ReplID]

	allocMu    sync.Mutex
	allocLocks map[uuid.UUID]*sync.Mutex

	// dnMu serializes mailbox creation so the DN index stays unique
	dnMu sync.Mutex
}

// BadgerMetadataStoreConfig contains configuration for the BadgerDB store.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory where BadgerDB keeps its files
	DBPath string `mapstructure:"db_path"`

	// InMemory runs BadgerDB without touching disk (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// IDCacheSize is the number of identifier map entries kept in each LRU
	IDCacheSize int `mapstructure:"id_cache_size"`

	// MaxReplID caps REPLID allocation; zero means store.MaxReplID
	MaxReplID uint16 `mapstructure:"max_repl_id"`

	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// NewBadgerMetadataStore opens (or creates) a BadgerDB-backed store.
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if config.DBPath == "" {
			return nil, Error.New("db_path is required")
		}
		opts = badger.DefaultOptions(config.DBPath)
	}
	opts = opts.WithLoggingLevel(badger.WARNING).WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20).WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, Error.New("failed to open BadgerDB at %q: %v", config.DBPath, err)
	}

	cacheSize := config.IDCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultIDCacheSize
	}
	idCache, err := lru.New[replIDKey, store.ReplGUID](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, Error.Wrap(err)
	}
	guidCache, err := lru.New[replGUIDKey, store.ReplID](cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, Error.Wrap(err)
	}

	s := &BadgerMetadataStore{
		db:         db,
		maxReplID:  store.MaxReplID,
		idCache:    idCache,
		guidCache:  guidCache,
		allocLocks: make(map[uuid.UUID]*sync.Mutex),
	}
	if config.MaxReplID != 0 {
		s.maxReplID = store.ReplID(config.MaxReplID)
	}
	return s, nil
}

// NewBadgerMetadataStoreWithDefaults opens a store at dbPath with default options.
func NewBadgerMetadataStoreWithDefaults(ctx context.Context, dbPath string) (*BadgerMetadataStore, error) {
	return NewBadgerMetadataStore(ctx, BadgerMetadataStoreConfig{DBPath: dbPath})
}

// Healthcheck verifies the database accepts read transactions.
func (s *BadgerMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return Error.New("database is closed")
	}
	return Error.Wrap(s.db.View(func(txn *badger.Txn) error { return nil }))
}

// Close closes the underlying database.
func (s *BadgerMetadataStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return Error.Wrap(s.db.Close())
}

// view runs fn in a read-only transaction, passing StoreErrors through.
func (s *BadgerMetadataStore) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.db.View(fn))
}

// update runs fn in a read-write transaction, passing StoreErrors through.
func (s *BadgerMetadataStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.db.Update(fn))
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) || Error.Has(err) {
		return err
	}
	return Error.Wrap(err)
}

// getValue copies the value at key. Missing keys return badger.ErrKeyNotFound.
func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// scan calls fn with a copy of every value under prefix, in key order.
func scan(txn *badger.Txn, prefix []byte, fn func(value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		value, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(value); err != nil {
			return err
		}
	}
	return nil
}

var _ store.MetadataStore = (*BadgerMetadataStore)(nil)
