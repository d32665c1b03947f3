package badger

import (
	"context"
	"errors"
	"strconv"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *BadgerMetadataStore) ReplIDFromGUID(ctx context.Context, database uuid.UUID, guid store.ReplGUID) (store.ReplID, error) {
	cacheKey := replGUIDKey{database: database, guid: guid}
	if id, ok := s.guidCache.Get(cacheKey); ok {
		return id, nil
	}

	lock := s.allocLock(database)
	lock.Lock()
	defer lock.Unlock()

	var replID store.ReplID
	err := s.update(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyReplGUID(database, guid))
		if err == nil {
			replID, err = decodeReplID(data)
			return err
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err = getValue(txn, keyNextReplID(database))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NewNotFoundError("database not found")
		}
		if err != nil {
			return err
		}
		next, err := decodeCounter(data)
		if err != nil {
			return err
		}
		if next > uint32(s.maxReplID) {
			return store.NewGenericError("replica id space exhausted")
		}

		replID = store.ReplID(next)
		if err := txn.Set(keyReplGUID(database, guid), encodeReplID(replID)); err != nil {
			return err
		}
		if err := txn.Set(keyReplID(database, replID), guid[:]); err != nil {
			return err
		}
		return txn.Set(keyNextReplID(database), encodeCounter(next+1))
	})
	if err != nil {
		return 0, err
	}

	s.guidCache.Add(cacheKey, replID)
	s.idCache.Add(replIDKey{database: database, replID: replID}, guid)
	return replID, nil
}

func (s *BadgerMetadataStore) ReplGUIDFromID(ctx context.Context, database uuid.UUID, replID store.ReplID) (store.ReplGUID, error) {
	cacheKey := replIDKey{database: database, replID: replID}
	if guid, ok := s.idCache.Get(cacheKey); ok {
		return guid, nil
	}

	var guid store.ReplGUID
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyReplID(database, replID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if _, dbErr := txn.Get(keyDatabase(database)); errors.Is(dbErr, badger.ErrKeyNotFound) {
				return store.NewNotFoundError("database not found")
			}
			return store.NewNotFoundError("replica id not mapped")
		}
		if err != nil {
			return err
		}
		guid, err = decodeGUID(data)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.idCache.Add(cacheKey, guid)
	return guid, nil
}

func (s *BadgerMetadataStore) ListReplicaMappings(ctx context.Context, database uuid.UUID) ([]store.ReplicaMapping, error) {
	var result []store.ReplicaMapping
	err := s.view(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(keyDatabase(database)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.NewNotFoundError("database not found")
			}
			return err
		}

		prefix := prefixReplIDs(database)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// keys end in fixed-width hex, so key order is REPLID order
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			guid, err := decodeGUID(value)
			if err != nil {
				return err
			}
			id, err := strconv.ParseUint(string(item.Key()[len(prefix):]), 16, 16)
			if err != nil {
				return Error.Wrap(err)
			}
			result = append(result, store.ReplicaMapping{ReplID: store.ReplID(id), ReplGUID: guid})
		}
		return nil
	})
	return result, err
}

func (s *BadgerMetadataStore) allocLock(database uuid.UUID) *sync.Mutex {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	lock, ok := s.allocLocks[database]
	if !ok {
		lock = &sync.Mutex{}
		s.allocLocks[database] = lock
	}
	return lock
}
