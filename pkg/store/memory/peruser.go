package memory

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *MemoryMetadataStore) GetPerUserInfo(ctx context.Context, key store.PerUserKey) (*store.PerUserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	info, ok := s.perUser[key.Normalized()]
	if !ok {
		return nil, nil
	}
	return clonePerUser(info), nil
}

func (s *MemoryMetadataStore) PutPerUserInfo(ctx context.Context, key store.PerUserKey, info *store.PerUserInfo) error {
	if info == nil {
		return store.NewInvalidParameterError("per-user info is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	s.perUser[key.Normalized()] = *clonePerUser(*info)
	return nil
}

func (s *MemoryMetadataStore) ListPerUserInfo(ctx context.Context, owner store.OwnerKind, scope uuid.UUID) ([]store.PerUserEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var result []store.PerUserEntry
	for key, info := range s.perUser {
		if key.Owner != owner || key.Scope != scope {
			continue
		}
		result = append(result, store.PerUserEntry{Key: key, Info: *clonePerUser(info)})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Key, result[j].Key
		if c := bytes.Compare(a.Folder.Bytes(), b.Folder.Bytes()); c != 0 {
			return c < 0
		}
		return a.User < b.User
	})
	return result, nil
}

func clonePerUser(info store.PerUserInfo) *store.PerUserInfo {
	info.Data = append([]byte(nil), info.Data...)
	return &info
}
