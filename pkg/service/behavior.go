package service

import (
	"fmt"
	"strings"
)

const (
	// VariantModern matches servers from 2013 on
	VariantModern = "modern"

	// VariantLegacy matches 2010 and earlier servers
	VariantLegacy = "legacy"

	// DefaultChunkSize is used when a read asks for maxDataSize 0
	DefaultChunkSize uint16 = 4096

	// MaxChunkSize caps the bytes returned by one read or accepted by one write
	MaxChunkSize uint16 = 4096
)

// Behavior selects between the documented product variants for the edge
// cases where they disagree.
type Behavior struct {
	// ZeroObjectIDNotFound makes LongTermIDFromID(0) fail with not-found
	// instead of returning the zero LongTermID.
	ZeroObjectIDNotFound bool

	// AcceptZeroReplGUID makes IDFromLongTermID accept an all-zero REPLGUID
	// instead of failing with invalid-parameter.
	AcceptZeroReplGUID bool

	// NegativeOffsetRPCFormat reports a negative read offset as rpc-format
	// instead of a generic error.
	NegativeOffsetRPCFormat bool

	// MissingMappingWrongServer reports a private logon without the per-MDB
	// REPLID mapping flag as wrong-server instead of invalid-parameter.
	MissingMappingWrongServer bool

	// StoreStateNotImplemented makes GetStoreState fail with not-implemented
	// instead of returning zero.
	StoreStateNotImplemented bool

	// DefaultChunkSize and MaxChunkSize bound per-user transfers
	DefaultChunkSize uint16
	MaxChunkSize     uint16
}

// ModernBehavior returns the behavior of current servers.
func ModernBehavior() Behavior {
	return Behavior{
		StoreStateNotImplemented: true,
		DefaultChunkSize:         DefaultChunkSize,
		MaxChunkSize:             MaxChunkSize,
	}
}

// LegacyBehavior returns the behavior of older servers.
func LegacyBehavior() Behavior {
	return Behavior{
		ZeroObjectIDNotFound:      true,
		AcceptZeroReplGUID:        true,
		NegativeOffsetRPCFormat:   true,
		MissingMappingWrongServer: true,
		DefaultChunkSize:          DefaultChunkSize,
		MaxChunkSize:              MaxChunkSize,
	}
}

// BehaviorFor returns the preset for a variant name.
func BehaviorFor(variant string) (Behavior, error) {
	switch strings.ToLower(variant) {
	case "", VariantModern:
		return ModernBehavior(), nil
	case VariantLegacy:
		return LegacyBehavior(), nil
	}
	return Behavior{}, fmt.Errorf("unknown behavior variant %q", variant)
}

func (b Behavior) withDefaults() Behavior {
	if b.MaxChunkSize == 0 {
		b.MaxChunkSize = MaxChunkSize
	}
	if b.DefaultChunkSize == 0 {
		b.DefaultChunkSize = DefaultChunkSize
	}
	if b.DefaultChunkSize > b.MaxChunkSize {
		b.DefaultChunkSize = b.MaxChunkSize
	}
	return b
}
