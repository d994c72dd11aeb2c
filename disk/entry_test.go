package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryEntry(t *testing.T) {
	e := NewRegistryEntry("CARD_Desc", 1024, 5000, 700, CodecLZ4)

	assert.Equal(t, CodecLZ4, e.Codec())
	assert.Equal(t, uint32(700), e.Len())
	assert.Equal(t, uint32(5000), e.RawLen())
	assert.Equal(t, uint64(1024), e.Pos())
	assert.Equal(t, "CARD_Desc", e.Name())
	assert.Equal(t, registryEntryFixedSize+len("CARD_Desc"), e.Size())
}

func TestParseRegistry(t *testing.T) {
	var buf []byte
	buf = append(buf, NewRegistryEntry("CARD_Indx", 16, 8, 8, CodecNo)...)
	buf = append(buf, NewRegistryEntry("WORD_Text", 24, 100, 60, CodecZSTD)...)

	entries, err := parseRegistry(buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CARD_Indx", entries[0].Name())
	assert.Equal(t, "WORD_Text", entries[1].Name())
	assert.Equal(t, CodecZSTD, entries[1].Codec())
}

func TestParseRegistryEmpty(t *testing.T) {
	entries, err := parseRegistry(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseRegistryTruncated(t *testing.T) {
	full := NewRegistryEntry("CARD_Name", 16, 8, 8, CodecNo)

	_, err := parseRegistry(full[:10])
	assert.Error(t, err)

	// fixed part intact but the name is cut off
	_, err = parseRegistry(full[:len(full)-2])
	assert.Error(t, err)
}

func TestParseCodec(t *testing.T) {
	for _, c := range []Codec{CodecNo, CodecLZ4, CodecZSTD} {
		got, err := ParseCodec(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCodec("brotli")
	assert.Error(t, err)
}

func TestCompressBlockFallsBackToRaw(t *testing.T) {
	// two bytes cannot shrink, the stored codec degrades to none
	block, used, err := compressBlock(CodecLZ4, []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, CodecNo, used)
	assert.Equal(t, []byte{0x01, 0x02}, block)

	got, err := decompressBlock(used, block, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, got)
}
