package store

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// ReplID is the 16-bit short form of a replica identifier.
//
// A ReplID is only meaningful within the database that assigned it.
// The value 0 is reserved and never allocated.
type ReplID uint16

// ReplGUID is the 128-bit, globally unique form of a replica identifier.
type ReplGUID = uuid.UUID

const (
	// MaxReplID is the last assignable short replica id.
	MaxReplID ReplID = 0xFFFF

	// LocalReplID is the short id every database assigns to its own REPLGUID.
	LocalReplID ReplID = 1

	// GlobalCounterMask keeps the 48 bits of a global counter.
	GlobalCounterMask uint64 = 1<<48 - 1

	// LongTermIDSize is the encoded size of a LongTermID.
	LongTermIDSize = 24
)

// ID is a 64-bit folder or message identifier.
//
// The low 16 bits hold the ReplID and the high 48 bits hold the global
// counter, which matches the little-endian layout of the 8-byte wire form
// (2 bytes of ReplID followed by 6 bytes of counter).
type ID uint64

// NewID composes an ID from a short replica id and a 48-bit counter.
func NewID(replID ReplID, counter uint64) ID {
	return ID((counter&GlobalCounterMask)<<16 | uint64(replID))
}

// ReplID returns the short replica id part of the identifier.
func (id ID) ReplID() ReplID {
	return ReplID(uint64(id) & 0xFFFF)
}

// GlobalCounter returns the 48-bit counter part of the identifier.
func (id ID) GlobalCounter() uint64 {
	return uint64(id) >> 16
}

// IsZero reports whether the identifier is the null id.
func (id ID) IsZero() bool {
	return id == 0
}

func (id ID) String() string {
	return fmt.Sprintf("%04X-%012X", uint16(id.ReplID()), id.GlobalCounter())
}

// LongTermID is the database independent form of an ID.
type LongTermID struct {
	ReplGUID      ReplGUID `json:"repl_guid"`
	GlobalCounter uint64   `json:"global_counter"`
}

// IsZero reports whether both the REPLGUID and the counter are zero.
func (l LongTermID) IsZero() bool {
	return l.ReplGUID == uuid.Nil && l.GlobalCounter == 0
}

// Bytes encodes the LongTermID as GUID(16) | counter(6, big endian) | pad(2).
func (l LongTermID) Bytes() []byte {
	buf := make([]byte, LongTermIDSize)
	copy(buf[:16], l.ReplGUID[:])

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], l.GlobalCounter&GlobalCounterMask)
	copy(buf[16:22], counter[2:])
	return buf
}

// String returns a stable textual form, also used as a storage key part.
func (l LongTermID) String() string {
	return fmt.Sprintf("%s-%012x", l.ReplGUID.String(), l.GlobalCounter&GlobalCounterMask)
}

// ParseLongTermID decodes the 24-byte form produced by Bytes.
func ParseLongTermID(b []byte) (LongTermID, error) {
	if len(b) != LongTermIDSize {
		return LongTermID{}, NewInvalidParameterError(
			fmt.Sprintf("long term id must be %d bytes, got %d", LongTermIDSize, len(b)))
	}
	if b[22] != 0 || b[23] != 0 {
		return LongTermID{}, NewInvalidParameterError("long term id padding must be zero")
	}

	var l LongTermID
	copy(l.ReplGUID[:], b[:16])

	var counter [8]byte
	copy(counter[2:], b[16:22])
	l.GlobalCounter = binary.BigEndian.Uint64(counter[:])
	return l, nil
}
