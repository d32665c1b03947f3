// Package registry binds named metadata stores to the databases, mailboxes
// and public folders served by this node.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/internal/logger"
	"github.com/marmos91/dittostore/pkg/store"
)

// Registry is the directory of a store server.
//
// It maps store names to MetadataStore instances and database names to the
// store holding them. Mailboxes and public folders are persisted in the
// database's store; the registry only provisions and looks them up.
//
// Thread safety:
// All methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	localServer string
	stores      map[string]store.MetadataStore
	databases   map[string]*Database
	byGUID      map[uuid.UUID]*Database
}

// NewRegistry creates an empty registry for the server named localServer.
func NewRegistry(localServer string) *Registry {
	return &Registry{
		localServer: localServer,
		stores:      make(map[string]store.MetadataStore),
		databases:   make(map[string]*Database),
		byGUID:      make(map[uuid.UUID]*Database),
	}
}

// LocalServer returns the DN of this server.
func (r *Registry) LocalServer() string {
	return r.localServer
}

// RegisterStore adds a named store.
func (r *Registry) RegisterStore(name string, s store.MetadataStore) error {
	if s == nil {
		return fmt.Errorf("cannot register nil metadata store")
	}
	if name == "" {
		return fmt.Errorf("cannot register metadata store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("metadata store %q already registered", name)
	}
	r.stores[name] = s
	return nil
}

// GetStore returns a registered store by name.
func (r *Registry) GetStore(name string) (store.MetadataStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.stores[name]
	if !exists {
		return nil, fmt.Errorf("metadata store %q not found", name)
	}
	return s, nil
}

// AddDatabase provisions a database in its store and registers it.
func (r *Registry) AddDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("cannot add database with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.databases[cfg.Name]; exists {
		return nil, fmt.Errorf("database %q already exists", cfg.Name)
	}
	s, exists := r.stores[cfg.Store]
	if !exists {
		return nil, fmt.Errorf("metadata store %q not found", cfg.Store)
	}

	db := &store.Database{
		GUID:     cfg.GUID,
		ReplGUID: cfg.ReplGUID,
		Name:     cfg.Name,
		Kind:     cfg.Kind,
		Server:   cfg.Server,
	}
	if db.GUID == uuid.Nil {
		db.GUID = DatabaseGUID(cfg.Name)
	}
	if db.ReplGUID == uuid.Nil {
		db.ReplGUID = DatabaseReplGUID(cfg.Name)
	}
	if db.Server == "" {
		db.Server = r.localServer
	}

	if err := s.CreateDatabase(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create database %q: %w", cfg.Name, err)
	}

	// a persistent store keeps the first provisioned record
	stored, err := s.GetDatabase(ctx, db.GUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load database %q: %w", cfg.Name, err)
	}

	entry := &Database{Database: stored, StoreName: cfg.Store, Store: s}
	r.databases[cfg.Name] = entry
	r.byGUID[stored.GUID] = entry

	logger.Debug("Database %q (%s) registered on store %q", cfg.Name, stored.Kind, cfg.Store)
	return entry, nil
}

// GetDatabase returns a registered database by name.
func (r *Registry) GetDatabase(name string) (*Database, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, exists := r.databases[name]
	if !exists {
		return nil, store.NewNotFoundError(fmt.Sprintf("database %q not found", name))
	}
	return db, nil
}

// FindDatabase returns a registered database by GUID.
func (r *Registry) FindDatabase(guid uuid.UUID) (*Database, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	db, exists := r.byGUID[guid]
	if !exists {
		return nil, store.NewNotFoundError("database not found")
	}
	return db, nil
}

// ListDatabases returns registered databases ordered by name.
func (r *Registry) ListDatabases() []*Database {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Database, 0, len(r.databases))
	for _, db := range r.databases {
		result = append(result, db)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// PublicFolderDatabase returns the public folder database to log on to,
// preferring one hosted on this server.
func (r *Registry) PublicFolderDatabase() (*Database, error) {
	var fallback *Database
	for _, db := range r.ListDatabases() {
		if db.Kind != store.DatabasePublicFolders {
			continue
		}
		if strings.EqualFold(db.Server, r.localServer) {
			return db, nil
		}
		if fallback == nil {
			fallback = db
		}
	}
	if fallback == nil {
		return nil, store.NewNotFoundError("no public folder database configured")
	}
	return fallback, nil
}

// AddMailbox provisions a mailbox in its database.
//
// Special folder ids are allocated from the database's own replica with
// global counters 1 through store.SpecialFolderCount.
func (r *Registry) AddMailbox(ctx context.Context, cfg *MailboxConfig) (*store.Mailbox, error) {
	if cfg.LegacyDN == "" {
		return nil, fmt.Errorf("cannot add mailbox with empty legacy DN")
	}

	db, err := r.GetDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if db.Kind != store.DatabaseMailbox {
		return nil, fmt.Errorf("database %q is not a mailbox database", cfg.Database)
	}

	mbx := &store.Mailbox{
		GUID:         cfg.GUID,
		LegacyDN:     cfg.LegacyDN,
		DisplayName:  cfg.DisplayName,
		DatabaseGUID: db.GUID,
		ReplGUID:     db.ReplGUID,
		Delegates:    cfg.Delegates,
		CreatedAt:    time.Now().UTC(),
	}
	if mbx.GUID == uuid.Nil {
		mbx.GUID = MailboxGUID(cfg.LegacyDN)
	}
	if mbx.DisplayName == "" {
		mbx.DisplayName = cfg.LegacyDN
	}
	for i := range mbx.SpecialFolders {
		mbx.SpecialFolders[i] = store.NewID(store.LocalReplID, uint64(i+1))
	}

	if err := db.Store.CreateMailbox(ctx, mbx); err != nil {
		return nil, fmt.Errorf("failed to create mailbox %q: %w", cfg.LegacyDN, err)
	}
	return db.Store.GetMailbox(ctx, mbx.GUID)
}

// FindMailbox looks a legacy DN up across all mailbox databases.
func (r *Registry) FindMailbox(ctx context.Context, legacyDN string) (*store.Mailbox, *Database, error) {
	searched := make(map[store.MetadataStore]bool)
	for _, db := range r.ListDatabases() {
		if db.Kind != store.DatabaseMailbox || searched[db.Store] {
			continue
		}
		searched[db.Store] = true

		mbx, err := db.Store.FindMailbox(ctx, legacyDN)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		home, err := r.FindDatabase(mbx.DatabaseGUID)
		if err != nil {
			return nil, nil, err
		}
		return mbx, home, nil
	}
	return nil, nil, store.NewNotFoundError("mailbox not found")
}

// AddPublicFolder stores a public folder replica record.
func (r *Registry) AddPublicFolder(ctx context.Context, cfg *PublicFolderConfig) (*store.PublicFolder, error) {
	if cfg.GlobalCounter == 0 || cfg.GlobalCounter > store.GlobalCounterMask {
		return nil, fmt.Errorf("public folder %q needs a 48-bit non-zero global counter", cfg.DisplayName)
	}

	db, err := r.GetDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	if db.Kind != store.DatabasePublicFolders {
		return nil, fmt.Errorf("database %q is not a public folder database", cfg.Database)
	}

	folder := &store.PublicFolder{
		LongTermID:  store.LongTermID{ReplGUID: db.ReplGUID, GlobalCounter: cfg.GlobalCounter},
		DisplayName: cfg.DisplayName,
		Role:        cfg.Role,
		Replicas:    cfg.Replicas,
	}
	if err := db.Store.PutPublicFolder(ctx, db.GUID, folder); err != nil {
		return nil, fmt.Errorf("failed to store public folder %q: %w", cfg.DisplayName, err)
	}
	return folder, nil
}

// Healthcheck checks every registered store.
func (r *Registry) Healthcheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for name, s := range r.stores {
		if err := s.Healthcheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every registered store.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, s := range r.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
