package crypt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/duelmod/cardtext/conf"
)

func TestApplyKeystreamVector(t *testing.T) {
	got := make([]byte, 8)
	applyKeystream(got, 1)
	assert.Equal(t, []byte{0x3E, 0x3E, 0x42, 0x42, 0x46, 0x46, 0x42, 0x45}, got)
}

func TestApplyKeystreamSelfInverse(t *testing.T) {
	orig := frand.Bytes(1024)

	data := append([]byte(nil), orig...)
	applyKeystream(data, 0x2A)
	assert.NotEqual(t, orig, data)

	applyKeystream(data, 0x2A)
	assert.Equal(t, orig, data)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		key     uint64
	}{
		{name: "empty", payload: nil, key: 0x2A},
		{name: "zero_key", payload: []byte("plain ascii probe"), key: 0},
		{name: "text", payload: []byte("Dark Magician\x00\x00\x00"), key: 0x2A},
		{name: "unicode", payload: []byte("История {одного} города"), key: 0x9EF},
		{name: "random", payload: frand.Bytes(64 * 1024), key: 1},
		{name: "repetitive", payload: bytes.Repeat([]byte("effect "), 4096), key: 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encode(tt.payload, tt.key)
			require.NoError(t, err)

			dec, err := Decode(enc, tt.key)
			require.NoError(t, err)

			if len(tt.payload) == 0 {
				assert.Empty(t, dec)
			} else {
				assert.Equal(t, tt.payload, dec)
			}
		})
	}
}

func TestDecodeWrongKey(t *testing.T) {
	enc, err := Encode([]byte(strings.Repeat("Summon this card. ", 20)), 0x2A)
	require.NoError(t, err)

	_, err = Decode(enc, 0x2B)
	assert.ErrorIs(t, err, ErrDecode)

	// the zero key degenerates the multiplicative part of the keystream,
	// a mismatch must still be caught
	enc, err = Encode([]byte(strings.Repeat("Summon this card. ", 20)), 0)
	require.NoError(t, err)

	_, err = Decode(enc, 1)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(frand.Bytes(256), 0x2A)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeLeavesInputIntact(t *testing.T) {
	enc, err := Encode([]byte("original"), 7)
	require.NoError(t, err)

	saved := append([]byte(nil), enc...)
	_, err = Decode(enc, 7)
	require.NoError(t, err)
	assert.Equal(t, saved, enc)
}

func TestDecodeSizeLimit(t *testing.T) {
	old := conf.MaxBlobSize
	defer func() { conf.MaxBlobSize = old }()
	conf.MaxBlobSize = 16

	enc, err := Encode(bytes.Repeat([]byte{'a'}, 100), 3)
	require.NoError(t, err)

	_, err = Decode(enc, 3)
	assert.ErrorIs(t, err, ErrDecode)
}
