package textblob

// The word table carries raw byte records under a flat index: every 4 bytes
// is an offset, no header sentinel, no alignment padding. Slot bounds are
// clamped to the blob instead of zeroed, a clipped tail is still useful
// when inspecting a damaged dump.

func SplitFlat(index, blob []byte) [][]byte {
	offs := Offsets(index, 4, 0)
	if len(offs) < 2 {
		return nil
	}

	records := make([][]byte, 0, len(offs)-1)
	for i := 0; i+1 < len(offs); i++ {
		a := clamp(int64(offs[i]), int64(len(blob)))
		b := clamp(int64(offs[i+1]), int64(len(blob)))
		if b < a {
			b = a
		}
		rec := make([]byte, b-a)
		copy(rec, blob[a:b])
		records = append(records, rec)
	}
	return records
}

func clamp(v, hi int64) int64 {
	if v > hi {
		return hi
	}
	return v
}

func MergeFlat(records [][]byte) ([]byte, []uint32) {
	offsets := make([]uint32, 1, len(records)+1)

	size := 0
	for _, r := range records {
		size += len(r)
	}
	blob := make([]byte, 0, size)

	for _, rec := range records {
		blob = append(blob, rec...)
		offsets = append(offsets, uint32(len(blob)))
	}
	return blob, offsets
}
