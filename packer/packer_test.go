package packer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	p := NewBytesPacker(nil)
	p.PutByte(0x7F)
	p.PutUint16(0x0201)
	p.PutUint32(0x06050403)
	p.PutUint64(0x0E0D0C0B0A090807)
	p.PutStringWithSize("Card_Part")
	p.PutBytes([]byte{0xAA, 0xBB})

	u := NewBytesUnpacker(p.Data)

	b, err := u.NextByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), b)

	v16, err := u.NextUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v16)

	v32, err := u.NextUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x06050403), v32)

	v64, err := u.NextUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0E0D0C0B0A090807), v64)

	s, err := u.NextStringWithSize()
	require.NoError(t, err)
	assert.Equal(t, "Card_Part", s)

	tail, err := u.NextBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, tail)
	assert.Equal(t, 0, u.Len())
}

func TestUnpackLittleEndian(t *testing.T) {
	p := NewBytesPacker(nil)
	p.PutUint32(0x0102)
	assert.Equal(t, []byte{0x02, 0x01, 0x00, 0x00}, p.Data)
}

func TestUnpackShortBuffer(t *testing.T) {
	u := NewBytesUnpacker([]byte{0x01})

	_, err := u.NextUint32()
	assert.Error(t, err)

	// failed read consumes nothing
	b, err := u.NextByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)
}
