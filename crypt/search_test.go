package crypt

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedProbe(t *testing.T, key uint64) []byte {
	t.Helper()
	enc, err := Encode([]byte(strings.Repeat("4-byte aligned records\x00\x00", 32)), key)
	require.NoError(t, err)
	return enc
}

func TestFindKey(t *testing.T) {
	enc := encodedProbe(t, 0x2A)

	key, err := FindKey(context.Background(), enc, 0, 1<<8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2A), key)
}

func TestFindKeyExhaustsBudget(t *testing.T) {
	enc := encodedProbe(t, 0x2A)

	_, err := FindKey(context.Background(), enc, 0, 0x20)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFindKeyResumes(t *testing.T) {
	enc := encodedProbe(t, 0x2A)

	_, err := FindKey(context.Background(), enc, 0, 0x20)
	require.ErrorIs(t, err, ErrKeyNotFound)

	// pick up where the first budget ended
	key, err := FindKey(context.Background(), enc, 0x20, 0x20)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2A), key)
}

func TestFindKeyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindKey(ctx, encodedProbe(t, 0x2A), 0, 1<<8)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindKeyCountsAttempts(t *testing.T) {
	enc := encodedProbe(t, 0x05)

	before := Attempts()
	_, err := FindKey(context.Background(), enc, 0, 1<<8)
	require.NoError(t, err)
	assert.Equal(t, before+6, Attempts())
}
