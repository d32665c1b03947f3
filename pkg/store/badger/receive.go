package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

func (s *BadgerMetadataStore) ListReceiveFolders(ctx context.Context, mailbox uuid.UUID) ([]store.ReceiveFolderRow, error) {
	var rows []store.ReceiveFolderRow
	err := s.view(ctx, func(txn *badger.Txn) error {
		if err := requireMailbox(txn, mailbox); err != nil {
			return err
		}
		return scan(txn, prefixReceiveFolders(mailbox), func(value []byte) error {
			row, err := decodeReceiveFolder(value)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	return rows, err
}

func (s *BadgerMetadataStore) PutReceiveFolder(ctx context.Context, mailbox uuid.UUID, row store.ReceiveFolderRow) error {
	data, err := encode(row, "receive folder")
	if err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := requireMailbox(txn, mailbox); err != nil {
			return err
		}
		return txn.Set(keyReceiveFolder(mailbox, row.MessageClass), data)
	})
}

func (s *BadgerMetadataStore) DeleteReceiveFolder(ctx context.Context, mailbox uuid.UUID, messageClass string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := requireMailbox(txn, mailbox); err != nil {
			return err
		}
		return txn.Delete(keyReceiveFolder(mailbox, messageClass))
	})
}

func requireMailbox(txn *badger.Txn, mailbox uuid.UUID) error {
	_, err := txn.Get(keyMailbox(mailbox))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.NewNotFoundError("mailbox not found")
	}
	return err
}
