package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *MemoryMetadataStore) ListReceiveFolders(ctx context.Context, mailbox uuid.UUID) ([]store.ReceiveFolderRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	rows, ok := s.receiveFolders[mailbox]
	if !ok {
		return nil, store.NewNotFoundError("mailbox not found")
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]store.ReceiveFolderRow, 0, len(keys))
	for _, k := range keys {
		result = append(result, rows[k])
	}
	return result, nil
}

func (s *MemoryMetadataStore) PutReceiveFolder(ctx context.Context, mailbox uuid.UUID, row store.ReceiveFolderRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	rows, ok := s.receiveFolders[mailbox]
	if !ok {
		return store.NewNotFoundError("mailbox not found")
	}
	rows[store.FoldClass(row.MessageClass)] = row
	return nil
}

func (s *MemoryMetadataStore) DeleteReceiveFolder(ctx context.Context, mailbox uuid.UUID, messageClass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	rows, ok := s.receiveFolders[mailbox]
	if !ok {
		return store.NewNotFoundError("mailbox not found")
	}
	delete(rows, store.FoldClass(messageClass))
	return nil
}
