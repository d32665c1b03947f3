package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

// ReplIDFromGUID allocates under the write lock so the lookup and the insert
// happen in one critical section.
func (s *MemoryMetadataStore) ReplIDFromGUID(ctx context.Context, database uuid.UUID, guid store.ReplGUID) (store.ReplID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	idmap, ok := s.idmaps[database]
	if !ok {
		return 0, store.NewNotFoundError("database not found")
	}

	if replID, ok := idmap.byGUID[guid]; ok {
		return replID, nil
	}

	if idmap.next == 0 || idmap.next > s.maxReplID {
		return 0, store.NewGenericError("replica id space exhausted")
	}

	replID := idmap.next
	idmap.byGUID[guid] = replID
	idmap.byID[replID] = guid
	// wraps to 0 after MaxReplID, which marks the space as exhausted
	idmap.next++
	return replID, nil
}

func (s *MemoryMetadataStore) ReplGUIDFromID(ctx context.Context, database uuid.UUID, replID store.ReplID) (store.ReplGUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return uuid.Nil, err
	}

	idmap, ok := s.idmaps[database]
	if !ok {
		return uuid.Nil, store.NewNotFoundError("database not found")
	}

	guid, ok := idmap.byID[replID]
	if !ok {
		return uuid.Nil, store.NewNotFoundError("replica id not mapped")
	}
	return guid, nil
}

func (s *MemoryMetadataStore) ListReplicaMappings(ctx context.Context, database uuid.UUID) ([]store.ReplicaMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	idmap, ok := s.idmaps[database]
	if !ok {
		return nil, store.NewNotFoundError("database not found")
	}

	result := make([]store.ReplicaMapping, 0, len(idmap.byID))
	for id, guid := range idmap.byID {
		result = append(result, store.ReplicaMapping{ReplID: id, ReplGUID: guid})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReplID < result[j].ReplID })
	return result, nil
}
