package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *BadgerMetadataStore) PutPublicFolder(ctx context.Context, database uuid.UUID, folder *store.PublicFolder) error {
	if folder == nil {
		return store.NewInvalidParameterError("public folder is required")
	}

	data, err := encode(folder, "public folder")
	if err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(keyDatabase(database)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.NewNotFoundError("database not found")
			}
			return err
		}
		return txn.Set(keyPublicFolder(database, folder.LongTermID), data)
	})
}

func (s *BadgerMetadataStore) GetPublicFolder(ctx context.Context, database uuid.UUID, ltid store.LongTermID) (*store.PublicFolder, error) {
	var folder *store.PublicFolder
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyPublicFolder(database, ltid))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NewNotFoundError("public folder not found")
		}
		if err != nil {
			return err
		}
		folder, err = decodePublicFolder(data)
		return err
	})
	return folder, err
}

func (s *BadgerMetadataStore) ListPublicFolders(ctx context.Context, database uuid.UUID) ([]*store.PublicFolder, error) {
	var result []*store.PublicFolder
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, prefixPublicFolders(database), func(value []byte) error {
			f, err := decodePublicFolder(value)
			if err != nil {
				return err
			}
			result = append(result, f)
			return nil
		})
	})
	return result, err
}
