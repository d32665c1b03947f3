package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *BadgerMetadataStore) GetPerUserInfo(ctx context.Context, key store.PerUserKey) (*store.PerUserInfo, error) {
	var info *store.PerUserInfo
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyPerUser(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rec, err := decodePerUser(data)
		if err != nil {
			return err
		}
		info = &rec.Info
		return nil
	})
	return info, err
}

func (s *BadgerMetadataStore) PutPerUserInfo(ctx context.Context, key store.PerUserKey, info *store.PerUserInfo) error {
	if info == nil {
		return store.NewInvalidParameterError("per-user info is required")
	}

	data, err := encode(perUserRecord{Key: key.Normalized(), Info: *info}, "per-user info")
	if err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(keyPerUser(key), data)
	})
}

func (s *BadgerMetadataStore) ListPerUserInfo(ctx context.Context, owner store.OwnerKind, scope uuid.UUID) ([]store.PerUserEntry, error) {
	var result []store.PerUserEntry
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixPerUserScope(owner, scope), func(value []byte) error {
			rec, err := decodePerUser(value)
			if err != nil {
				return err
			}
			result = append(result, store.PerUserEntry{Key: rec.Key, Info: rec.Info})
			return nil
		})
	})
	return result, err
}
