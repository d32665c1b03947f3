package badger

import (
	"encoding/json"

	"github.com/marmos91/dittostore/pkg/store"
)

// Values are JSON encoded: rows are small and a readable encoding keeps the
// database easy to inspect with badger's own tooling. Identifier map entries
// use fixed-width binary (see keys.go).

func encode(v any, what string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, Error.New("failed to encode %s: %v", what, err)
	}
	return data, nil
}

func decode(data []byte, v any, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return Error.New("failed to decode %s: %v", what, err)
	}
	return nil
}

func decodeDatabase(data []byte) (*store.Database, error) {
	var db store.Database
	if err := decode(data, &db, "database"); err != nil {
		return nil, err
	}
	return &db, nil
}

func decodeMailbox(data []byte) (*store.Mailbox, error) {
	var mbx store.Mailbox
	if err := decode(data, &mbx, "mailbox"); err != nil {
		return nil, err
	}
	return &mbx, nil
}

func decodeReceiveFolder(data []byte) (store.ReceiveFolderRow, error) {
	var row store.ReceiveFolderRow
	err := decode(data, &row, "receive folder")
	return row, err
}

// perUserRecord keeps the key next to the value so listings can rebuild it
// without parsing the key string.
type perUserRecord struct {
	Key  store.PerUserKey  `json:"key"`
	Info store.PerUserInfo `json:"info"`
}

func decodePerUser(data []byte) (*perUserRecord, error) {
	var rec perUserRecord
	if err := decode(data, &rec, "per-user info"); err != nil {
		return nil, err
	}
	return &rec, nil
}

func decodePublicFolder(data []byte) (*store.PublicFolder, error) {
	var f store.PublicFolder
	if err := decode(data, &f, "public folder"); err != nil {
		return nil, err
	}
	return &f, nil
}
