package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/marmos91/dittostore/pkg/store"
)

// Key Namespace
// =============
//
// BadgerDB is a flat key-value store, so every data type lives under its own
// prefix. Rows that are listed together share a prefix so a single iterator
// with Prefix set returns them in key order.
//
// Data Type             Prefix    Key Format                               Value
// ==========================================================================================
// Database              "db:"     db:<dbGUID>                              Database (JSON)
// Mailbox               "mbx:"    mbx:<mailboxGUID>                        Mailbox (JSON)
// Mailbox by DN         "dn:"     dn:<lower legacy DN>                     mailbox GUID (16 bytes)
// REPLID -> REPLGUID    "rid:"    rid:<dbGUID>:<replID %04x>               REPLGUID (16 bytes)
// REPLGUID -> REPLID    "rguid:"  rguid:<dbGUID>:<REPLGUID>                REPLID (2 bytes, BE)
// Next REPLID           "rnext:"  rnext:<dbGUID>                           uint32 (BE)
// Receive folder        "rf:"     rf:<mailboxGUID>:<UPPER class>           ReceiveFolderRow (JSON)
// Per-user info         "pu:"     pu:<owner>:<scopeGUID>:<ltid>:<user>     PerUserInfo (JSON)
// Public folder         "pf:"     pf:<dbGUID>:<ltid>                       PublicFolder (JSON)
//
// The next REPLID counter is stored as uint32 so 0x10000 can mark an
// exhausted space.

const (
	prefixDatabase      = "db:"
	prefixMailbox       = "mbx:"
	prefixMailboxDN     = "dn:"
	prefixReplID        = "rid:"
	prefixReplGUID      = "rguid:"
	prefixNextReplID    = "rnext:"
	prefixReceiveFolder = "rf:"
	prefixPerUser       = "pu:"
	prefixPublicFolder  = "pf:"
)

func keyDatabase(guid uuid.UUID) []byte {
	return []byte(prefixDatabase + guid.String())
}

func keyMailbox(guid uuid.UUID) []byte {
	return []byte(prefixMailbox + guid.String())
}

func keyMailboxDN(dn string) []byte {
	return []byte(prefixMailboxDN + strings.ToLower(dn))
}

func keyReplID(database uuid.UUID, replID store.ReplID) []byte {
	return []byte(fmt.Sprintf("%s%s:%04x", prefixReplID, database, uint16(replID)))
}

func prefixReplIDs(database uuid.UUID) []byte {
	return []byte(prefixReplID + database.String() + ":")
}

func keyReplGUID(database uuid.UUID, guid store.ReplGUID) []byte {
	return []byte(prefixReplGUID + database.String() + ":" + guid.String())
}

func keyNextReplID(database uuid.UUID) []byte {
	return []byte(prefixNextReplID + database.String())
}

func keyReceiveFolder(mailbox uuid.UUID, class string) []byte {
	return append(prefixReceiveFolders(mailbox), store.FoldClass(class)...)
}

func prefixReceiveFolders(mailbox uuid.UUID) []byte {
	return []byte(prefixReceiveFolder + mailbox.String() + ":")
}

func keyPerUser(key store.PerUserKey) []byte {
	key = key.Normalized()
	return append(prefixPerUserScope(key.Owner, key.Scope),
		[]byte(key.Folder.String()+":"+key.User)...)
}

func prefixPerUserScope(owner store.OwnerKind, scope uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:", prefixPerUser, owner, scope))
}

func keyPublicFolder(database uuid.UUID, ltid store.LongTermID) []byte {
	return append(prefixPublicFolders(database), ltid.String()...)
}

func prefixPublicFolders(database uuid.UUID) []byte {
	return []byte(prefixPublicFolder + database.String() + ":")
}

func encodeReplID(id store.ReplID) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(id))
	return buf
}

func decodeReplID(b []byte) (store.ReplID, error) {
	if len(b) != 2 {
		return 0, Error.New("invalid replica id value length %d", len(b))
	}
	return store.ReplID(binary.BigEndian.Uint16(b)), nil
}

func encodeCounter(n uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, n)
	return buf
}

func decodeCounter(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, Error.New("invalid counter value length %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func decodeGUID(b []byte) (uuid.UUID, error) {
	guid, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, Error.Wrap(err)
	}
	return guid, nil
}
