package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *MemoryMetadataStore) CreateDatabase(ctx context.Context, db *store.Database) error {
	if db == nil || db.GUID == uuid.Nil {
		return store.NewInvalidParameterError("database guid is required")
	}
	if db.ReplGUID == uuid.Nil {
		return store.NewInvalidParameterError("database repl guid is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	if _, exists := s.databases[db.GUID]; exists {
		return nil
	}

	clone := *db
	s.databases[db.GUID] = &clone
	s.idmaps[db.GUID] = &identifierMap{
		byID:   map[store.ReplID]store.ReplGUID{store.LocalReplID: db.ReplGUID},
		byGUID: map[store.ReplGUID]store.ReplID{db.ReplGUID: store.LocalReplID},
		next:   store.LocalReplID + 1,
	}
	return nil
}

func (s *MemoryMetadataStore) GetDatabase(ctx context.Context, guid uuid.UUID) (*store.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	db, ok := s.databases[guid]
	if !ok {
		return nil, store.NewNotFoundError("database not found")
	}
	clone := *db
	return &clone, nil
}

func (s *MemoryMetadataStore) ListDatabases(ctx context.Context) ([]*store.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	result := make([]*store.Database, 0, len(s.databases))
	for _, db := range s.databases {
		clone := *db
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryMetadataStore) CreateMailbox(ctx context.Context, mbx *store.Mailbox) error {
	if mbx == nil || mbx.GUID == uuid.Nil {
		return store.NewInvalidParameterError("mailbox guid is required")
	}
	if mbx.LegacyDN == "" {
		return store.NewInvalidParameterError("mailbox legacy DN is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	if _, ok := s.databases[mbx.DatabaseGUID]; !ok {
		return store.NewNotFoundError("mailbox database not found")
	}
	if _, exists := s.mailboxes[mbx.GUID]; exists {
		return nil
	}
	dn := strings.ToLower(mbx.LegacyDN)
	if _, taken := s.mailboxesByDN[dn]; taken {
		return store.NewInvalidParameterError("legacy DN already assigned to another mailbox")
	}

	s.mailboxes[mbx.GUID] = cloneMailbox(mbx)
	s.mailboxesByDN[dn] = mbx.GUID

	rows := make(map[string]store.ReceiveFolderRow)
	for _, row := range store.DefaultReceiveFolders(mbx) {
		rows[store.FoldClass(row.MessageClass)] = row
	}
	s.receiveFolders[mbx.GUID] = rows
	return nil
}

func (s *MemoryMetadataStore) GetMailbox(ctx context.Context, guid uuid.UUID) (*store.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	mbx, ok := s.mailboxes[guid]
	if !ok {
		return nil, store.NewNotFoundError("mailbox not found")
	}
	return cloneMailbox(mbx), nil
}

func (s *MemoryMetadataStore) FindMailbox(ctx context.Context, legacyDN string) (*store.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	guid, ok := s.mailboxesByDN[strings.ToLower(legacyDN)]
	if !ok {
		return nil, store.NewNotFoundError("mailbox not found")
	}
	return cloneMailbox(s.mailboxes[guid]), nil
}

func cloneMailbox(mbx *store.Mailbox) *store.Mailbox {
	clone := *mbx
	clone.Delegates = append([]string(nil), mbx.Delegates...)
	return &clone
}
