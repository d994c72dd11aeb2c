package part

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePidx(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0x00, // sentinel
		0x02, 0x00, 0x00, 0x10, // ptr=2, main=1, sub=0
		0x00, 0x00, 0x00, 0x00, // record without spans
		0x05, 0x01, 0x00, 0x23, // ptr=0x105, main=2, sub=3
	}

	entries := DecodePidx(data)
	require.Equal(t, []Entry{
		{Ptr: 2, Main: 1, Sub: 0},
		{},
		{Ptr: 0x105, Main: 2, Sub: 3},
	}, entries)

	assert.True(t, entries[1].IsZero())
	assert.Equal(t, 1, entries[0].Count())
	assert.Equal(t, 5, entries[2].Count())
}

func TestDecodePidxShort(t *testing.T) {
	assert.Empty(t, DecodePidx(nil))
	assert.Empty(t, DecodePidx([]byte{0, 0, 0, 0}))
	// trailing partial group is ignored
	assert.Len(t, DecodePidx([]byte{0, 0, 0, 0, 1, 0, 0, 0x10, 0xFF}), 1)
}

func TestDecodeParts(t *testing.T) {
	table := []byte{
		0x00, 0x00, 0x00, 0x00, // sentinel
		0xAA, 0xBB, 0xCC, 0xDD, // group 1, unused filler
		0x0A, 0x00, 0x14, 0x00, // group 2: [10, 20]
	}
	entries := []Entry{
		{},
		{Ptr: 2, Main: 1, Sub: 0},
	}

	ranges, err := DecodeParts(table, entries)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Nil(t, ranges[0])
	assert.Equal(t, []Range{{Lo: 10, Hi: 20}}, ranges[1])
}

func TestDecodePartsOutOfBounds(t *testing.T) {
	table := make([]byte, 2*GroupSize)

	_, err := DecodeParts(table, []Entry{{Ptr: 1, Main: 2, Sub: 0}})
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ranges [][]Range
	}{
		{name: "empty", ranges: [][]Range{}},
		{name: "no_spans", ranges: [][]Range{nil, nil}},
		{name: "single", ranges: [][]Range{{{Lo: 3, Hi: 9}}}},
		{
			name: "mixed",
			ranges: [][]Range{
				{{Lo: 0, Hi: 5}, {Lo: 7, Hi: 30}},
				nil,
				{{Lo: 100, Hi: 200}},
			},
		},
		{
			name: "inverted_kept",
			ranges: [][]Range{
				{{Lo: 9, Hi: 3}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, pointers := EncodeParts(tt.ranges)
			require.Len(t, pointers, len(tt.ranges))

			entries := make([]Entry, len(tt.ranges))
			for i := range tt.ranges {
				entries[i] = Entry{
					Ptr:  pointers[i],
					Main: uint8(len(tt.ranges[i])),
				}
			}

			got, err := DecodeParts(table, entries)
			require.NoError(t, err)
			require.Len(t, got, len(tt.ranges))
			for i := range tt.ranges {
				if len(tt.ranges[i]) == 0 {
					assert.Nil(t, got[i])
					continue
				}
				assert.Equal(t, tt.ranges[i], got[i])
			}
		})
	}
}

func TestEncodePartsPointers(t *testing.T) {
	table, pointers := EncodeParts([][]Range{
		{{Lo: 1, Hi: 2}},
		nil,
		{{Lo: 3, Hi: 4}, {Lo: 5, Hi: 6}},
	})

	// groups are allocated consecutively after the sentinel
	assert.Equal(t, []uint32{1, 0, 2}, pointers)
	assert.Len(t, table, 4*GroupSize)
	assert.Equal(t, make([]byte, GroupSize), table[:GroupSize])
}

func TestEncodePidxLayout(t *testing.T) {
	data := EncodePidx([]Entry{
		{Ptr: 2, Main: 1, Sub: 0},
		{},
		{Ptr: 0x105, Main: 2, Sub: 3},
	})

	want := []byte{
		0x00, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x10,
		0x00, 0x00, 0x00, 0x00,
		0x05, 0x01, 0x00, 0x23,
	}
	assert.Equal(t, want, data)

	// decoding what we encoded lands on the same entries
	assert.Equal(t, []Entry{
		{Ptr: 2, Main: 1, Sub: 0},
		{},
		{Ptr: 0x105, Main: 2, Sub: 3},
	}, DecodePidx(data))
}
