package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Layout(t *testing.T) {
	id := NewID(0x0001, 0x0000_1234_5678)

	assert.Equal(t, ReplID(1), id.ReplID())
	assert.Equal(t, uint64(0x12345678), id.GlobalCounter())
	assert.Equal(t, ID(0x1234_5678_0001), id)
	assert.Equal(t, "0001-000012345678", id.String())
}

func TestID_CounterTruncatedTo48Bits(t *testing.T) {
	id := NewID(7, 1<<48|5)
	assert.Equal(t, uint64(5), id.GlobalCounter())
	assert.Equal(t, ReplID(7), id.ReplID())
}

func TestLongTermID_Encoding(t *testing.T) {
	guid := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	ltid := LongTermID{ReplGUID: guid, GlobalCounter: 0x010203040506}

	b := ltid.Bytes()
	require.Len(t, b, LongTermIDSize)
	assert.Equal(t, guid[:], b[:16])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0}, b[16:])

	parsed, err := ParseLongTermID(b)
	require.NoError(t, err)
	assert.Equal(t, ltid, parsed)
}

func TestParseLongTermID_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"short", make([]byte, 23)},
		{"long", make([]byte, 25)},
		{"nonzero_pad", append(make([]byte, 23), 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLongTermID(tt.input)
			assert.True(t, HasCode(err, ErrInvalidParameter))
		})
	}
}

func TestLongTermID_IsZero(t *testing.T) {
	assert.True(t, LongTermID{}.IsZero())
	assert.False(t, LongTermID{GlobalCounter: 1}.IsZero())
	assert.False(t, LongTermID{ReplGUID: uuid.New()}.IsZero())
}

func TestCodeOf(t *testing.T) {
	_, ok := CodeOf(nil)
	assert.False(t, ok)

	code, ok := CodeOf(NewNotFoundError("x"))
	assert.True(t, ok)
	assert.Equal(t, ErrNotFound, code)

	code, ok = CodeOf(assert.AnError)
	assert.True(t, ok)
	assert.Equal(t, ErrIOError, code)

	err := NewWrongServerError("/cn=other")
	assert.Equal(t, "mailbox is homed on another server: /cn=other", err.Error())
}
