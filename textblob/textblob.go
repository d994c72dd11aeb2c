package textblob

import (
	"encoding/binary"
	"strings"

	"github.com/duelmod/cardtext/packer"
	"github.com/duelmod/cardtext/util"
)

// A text artifact is a pair of buffers: a blob with the records back to
// back and an index of little-endian uint32 offsets into it. The card
// tables share one interleaved index: every 8-byte unit holds the name
// offset first and the description offset second. The first unit is a
// header sentinel, the blob opens with eight NUL bytes, and every record
// is NUL-padded up to 4-byte alignment.
const (
	CombinedStride = 8
	PhaseName      = 0
	PhaseDesc      = 4

	headerSize = 8
	recordPad  = 4
)

// Offsets extracts the uint32 column at the given phase, one value per
// stride. Trailing bytes short of a full value are ignored.
func Offsets(index []byte, stride, phase int) []uint32 {
	if stride <= 0 || phase < 0 {
		return nil
	}
	offs := make([]uint32, 0, len(index)/stride)
	for i := phase; i+4 <= len(index); i += stride {
		offs = append(offs, binary.LittleEndian.Uint32(index[i:]))
	}
	return offs
}

// Split cuts blob into records along the offset column at the given phase.
// The header sentinel is dropped, so a column of n offsets yields n-2
// records. A record slot whose bounds are inverted or run past the blob
// decodes to an empty string: dumps in the wild contain such slots and a
// single bad record must not fail the whole table.
func Split(index, blob []byte, stride, phase int) []string {
	offs := Offsets(index, stride, phase)
	if len(offs) > 0 {
		offs = offs[1:]
	}
	if len(offs) < 2 {
		return nil
	}

	records := make([]string, 0, len(offs)-1)
	for i := 0; i+1 < len(offs); i++ {
		a, b := int64(offs[i]), int64(offs[i+1])
		if b <= a || b > int64(len(blob)) {
			records = append(records, "")
			continue
		}
		s := util.DecodeUTF8Replace(blob[a:b])
		records = append(records, strings.TrimRight(s, "\x00"))
	}
	return records
}

var zeroPad [recordPad]byte

// Merge is the inverse of Split for one table: it builds the blob and the
// offset column ready for InterleaveIndex. The first record's length is
// counted together with the blob header before alignment, matching the
// layout the game ships.
func Merge(records []string) ([]byte, []uint32) {
	blob := make([]byte, headerSize, headerSize+estimateSize(records))

	running := uint32(0)
	offsets := make([]uint32, 0, len(records)+2)
	offsets = append(offsets, 4, headerSize)

	for i, rec := range records {
		l := len(rec)
		if i == 0 {
			l += headerSize
		}
		pad := (recordPad - l%recordPad) % recordPad

		running += uint32(l + pad)
		offsets = append(offsets, running)

		blob = append(blob, rec...)
		blob = append(blob, zeroPad[:pad]...)
	}
	return blob, offsets
}

func estimateSize(records []string) int {
	n := 0
	for _, r := range records {
		n += len(r) + recordPad
	}
	return n
}

// InterleaveIndex weaves two offset columns into the combined index layout.
// Columns of different lengths are truncated to the shorter one.
func InterleaveIndex(name, desc []uint32) []byte {
	n := len(name)
	if len(desc) < n {
		n = len(desc)
	}

	p := packer.NewBytesPacker(make([]byte, 0, n*CombinedStride))
	for i := 0; i < n; i++ {
		p.PutUint32(name[i])
		p.PutUint32(desc[i])
	}
	return p.Data
}

// DeinterleaveIndex splits a combined index back into its two columns.
func DeinterleaveIndex(index []byte) (name, desc []uint32) {
	return Offsets(index, CombinedStride, PhaseName), Offsets(index, CombinedStride, PhaseDesc)
}

// EncodeOffsets packs a single offset column without interleaving, the
// layout of the flat word table index.
func EncodeOffsets(offs []uint32) []byte {
	p := packer.NewBytesPacker(make([]byte, 0, len(offs)*4))
	for _, v := range offs {
		p.PutUint32(v)
	}
	return p.Data
}
