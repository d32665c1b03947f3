package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *MemoryMetadataStore) PutPublicFolder(ctx context.Context, database uuid.UUID, folder *store.PublicFolder) error {
	if folder == nil {
		return store.NewInvalidParameterError("public folder is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	if _, ok := s.databases[database]; !ok {
		return store.NewNotFoundError("database not found")
	}

	folders, ok := s.publicFolders[database]
	if !ok {
		folders = make(map[store.LongTermID]*store.PublicFolder)
		s.publicFolders[database] = folders
	}
	folders[folder.LongTermID] = cloneFolder(folder)
	return nil
}

func (s *MemoryMetadataStore) GetPublicFolder(ctx context.Context, database uuid.UUID, ltid store.LongTermID) (*store.PublicFolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	folder, ok := s.publicFolders[database][ltid]
	if !ok {
		return nil, store.NewNotFoundError("public folder not found")
	}
	return cloneFolder(folder), nil
}

func (s *MemoryMetadataStore) ListPublicFolders(ctx context.Context, database uuid.UUID) ([]*store.PublicFolder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	folders := s.publicFolders[database]
	result := make([]*store.PublicFolder, 0, len(folders))
	for _, f := range folders {
		result = append(result, cloneFolder(f))
	}
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].LongTermID.Bytes(), result[j].LongTermID.Bytes()) < 0
	})
	return result, nil
}

func cloneFolder(f *store.PublicFolder) *store.PublicFolder {
	clone := *f
	clone.Replicas = append([]string(nil), f.Replicas...)
	return &clone
}
