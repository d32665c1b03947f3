package badger

import (
	"context"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *BadgerMetadataStore) CreateDatabase(ctx context.Context, db *store.Database) error {
	if db == nil || db.GUID == uuid.Nil {
		return store.NewInvalidParameterError("database guid is required")
	}
	if db.ReplGUID == uuid.Nil {
		return store.NewInvalidParameterError("database repl guid is required")
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(keyDatabase(db.GUID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := encode(db, "database")
		if err != nil {
			return err
		}
		if err := txn.Set(keyDatabase(db.GUID), data); err != nil {
			return err
		}

		// seed the identifier map with the database's own replica
		if err := txn.Set(keyReplID(db.GUID, store.LocalReplID), db.ReplGUID[:]); err != nil {
			return err
		}
		if err := txn.Set(keyReplGUID(db.GUID, db.ReplGUID), encodeReplID(store.LocalReplID)); err != nil {
			return err
		}
		return txn.Set(keyNextReplID(db.GUID), encodeCounter(uint32(store.LocalReplID)+1))
	})
}

func (s *BadgerMetadataStore) GetDatabase(ctx context.Context, guid uuid.UUID) (*store.Database, error) {
	var db *store.Database
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyDatabase(guid))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NewNotFoundError("database not found")
		}
		if err != nil {
			return err
		}
		db, err = decodeDatabase(data)
		return err
	})
	return db, err
}

func (s *BadgerMetadataStore) ListDatabases(ctx context.Context) ([]*store.Database, error) {
	var result []*store.Database
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, []byte(prefixDatabase), func(value []byte) error {
			db, err := decodeDatabase(value)
			if err != nil {
				return err
			}
			result = append(result, db)
			return nil
		})
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, err
}

func (s *BadgerMetadataStore) CreateMailbox(ctx context.Context, mbx *store.Mailbox) error {
	if mbx == nil || mbx.GUID == uuid.Nil {
		return store.NewInvalidParameterError("mailbox guid is required")
	}
	if mbx.LegacyDN == "" {
		return store.NewInvalidParameterError("mailbox legacy DN is required")
	}

	s.dnMu.Lock()
	defer s.dnMu.Unlock()

	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(keyDatabase(mbx.DatabaseGUID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.NewNotFoundError("mailbox database not found")
			}
			return err
		}

		_, err := txn.Get(keyMailbox(mbx.GUID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		_, err = txn.Get(keyMailboxDN(mbx.LegacyDN))
		if err == nil {
			return store.NewInvalidParameterError("legacy DN already assigned to another mailbox")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := encode(mbx, "mailbox")
		if err != nil {
			return err
		}
		if err := txn.Set(keyMailbox(mbx.GUID), data); err != nil {
			return err
		}
		if err := txn.Set(keyMailboxDN(mbx.LegacyDN), mbx.GUID[:]); err != nil {
			return err
		}

		for _, row := range store.DefaultReceiveFolders(mbx) {
			rowData, err := encode(row, "receive folder")
			if err != nil {
				return err
			}
			if err := txn.Set(keyReceiveFolder(mbx.GUID, row.MessageClass), rowData); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerMetadataStore) GetMailbox(ctx context.Context, guid uuid.UUID) (*store.Mailbox, error) {
	var mbx *store.Mailbox
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		mbx, err = getMailbox(txn, guid)
		return err
	})
	return mbx, err
}

func (s *BadgerMetadataStore) FindMailbox(ctx context.Context, legacyDN string) (*store.Mailbox, error) {
	var mbx *store.Mailbox
	err := s.view(ctx, func(txn *badger.Txn) error {
		data, err := getValue(txn, keyMailboxDN(legacyDN))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.NewNotFoundError("mailbox not found")
		}
		if err != nil {
			return err
		}
		guid, err := decodeGUID(data)
		if err != nil {
			return err
		}
		mbx, err = getMailbox(txn, guid)
		return err
	})
	return mbx, err
}

func getMailbox(txn *badger.Txn, guid uuid.UUID) (*store.Mailbox, error) {
	data, err := getValue(txn, keyMailbox(guid))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.NewNotFoundError("mailbox not found")
	}
	if err != nil {
		return nil, err
	}
	return decodeMailbox(data)
}
