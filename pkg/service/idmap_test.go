package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittostore/pkg/store"
)

// TestIdentifierMap_RoundTrip verifies compress then expand returns the
// input, and that repeated compression is stable.
func TestIdentifierMap_RoundTrip(t *testing.T) {
	f := newFixture(t, ModernBehavior())
	sess := f.privateSession()
	ctx := context.Background()

	inputs := []store.LongTermID{
		{ReplGUID: f.mdb.ReplGUID, GlobalCounter: 1},
		foreignLTID(0x0000_FFFF_FFFF),
		foreignLTID(1<<48 - 1),
		foreignLTID(0),
	}

	for _, ltid := range inputs {
		id, err := f.svc.IDFromLongTermID(ctx, sess, ltid)
		require.NoError(t, err)
		assert.Equal(t, ltid.GlobalCounter, id.GlobalCounter())

		again, err := f.svc.IDFromLongTermID(ctx, sess, ltid)
		require.NoError(t, err)
		assert.Equal(t, id, again)

		back, err := f.svc.LongTermIDFromID(ctx, sess, id)
		require.NoError(t, err)
		assert.Equal(t, ltid, back)
	}
}

func TestIdentifierMap_LocalReplicaIsOne(t *testing.T) {
	f := newFixture(t, ModernBehavior())

	id, err := f.svc.IDFromLongTermID(context.Background(), f.privateSession(),
		store.LongTermID{ReplGUID: f.mdb.ReplGUID, GlobalCounter: 5})
	require.NoError(t, err)
	assert.Equal(t, store.NewID(store.LocalReplID, 5), id)
}

// TestIdentifierMap_DistinctGUIDsDistinctIDs verifies the mapping is a
// bijection: different REPLGUIDs never share a REPLID.
func TestIdentifierMap_DistinctGUIDsDistinctIDs(t *testing.T) {
	f := newFixture(t, ModernBehavior())
	sess := f.privateSession()
	ctx := context.Background()

	seen := map[store.ReplID]uuid.UUID{}
	for i := 0; i < 50; i++ {
		ltid := foreignLTID(uint64(i))
		id, err := f.svc.IDFromLongTermID(ctx, sess, ltid)
		require.NoError(t, err)
		require.NotZero(t, id.ReplID())
		_, dup := seen[id.ReplID()]
		require.False(t, dup)
		seen[id.ReplID()] = ltid.ReplGUID
	}
}

func TestIdentifierMap_UnknownReplID(t *testing.T) {
	f := newFixture(t, ModernBehavior())

	_, err := f.svc.LongTermIDFromID(context.Background(), f.privateSession(), store.NewID(0x0BAD, 1))
	assert.True(t, store.IsNotFound(err))
}

// TestIdentifierMap_SessionsPinDatabase verifies REPLIDs are scoped to the
// database the session logged on to.
func TestIdentifierMap_SessionsPinDatabase(t *testing.T) {
	f := newFixture(t, ModernBehavior())
	ctx := context.Background()
	private := f.privateSession()
	public := f.publicSession("/cn=alice")

	ltid := foreignLTID(7)
	privateID, err := f.svc.IDFromLongTermID(ctx, private, ltid)
	require.NoError(t, err)

	// the public folder database has never seen this REPLID
	_, err = f.svc.LongTermIDFromID(ctx, public, privateID)
	assert.True(t, store.IsNotFound(err))

	publicID, err := f.svc.IDFromLongTermID(ctx, public, ltid)
	require.NoError(t, err)
	back, err := f.svc.LongTermIDFromID(ctx, public, publicID)
	require.NoError(t, err)
	assert.Equal(t, ltid, back)
}

func TestIdentifierMap_ZeroObjectID(t *testing.T) {
	tests := []struct {
		name     string
		behavior Behavior
		notFound bool
	}{
		{"modern", ModernBehavior(), false},
		{"legacy", LegacyBehavior(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.behavior)
			ltid, err := f.svc.LongTermIDFromID(context.Background(), f.privateSession(), 0)
			if tt.notFound {
				assert.True(t, store.IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, ltid.IsZero())
		})
	}
}

func TestIdentifierMap_ZeroReplGUID(t *testing.T) {
	tests := []struct {
		name     string
		behavior Behavior
		invalid  bool
	}{
		{"modern", ModernBehavior(), true},
		{"legacy", LegacyBehavior(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.behavior)
			id, err := f.svc.IDFromLongTermID(context.Background(), f.privateSession(),
				store.LongTermID{GlobalCounter: 3})
			if tt.invalid {
				assert.True(t, store.HasCode(err, store.ErrInvalidParameter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, store.ReplID(0), id.ReplID())
			assert.Equal(t, uint64(3), id.GlobalCounter())
		})
	}
}

func TestIdentifierMap_RequiresSession(t *testing.T) {
	f := newFixture(t, ModernBehavior())

	_, err := f.svc.IDFromLongTermID(context.Background(), nil, foreignLTID(1))
	assert.True(t, store.HasCode(err, store.ErrInvalidParameter))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.LongTermIDFromID(ctx, f.privateSession(), store.NewID(1, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
