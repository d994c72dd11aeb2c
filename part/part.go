package part

import (
	"encoding/binary"
	"fmt"

	"github.com/duelmod/cardtext/packer"
)

// Effect ranges live in a pair of artifacts. The part table is a sequence
// of 4-byte groups, each an inclusive uint16 byte span inside one
// description record. The pidx table, also in 4-byte groups, maps record i
// to its spans: a group pointer into the part table plus two 4-bit counts
// packed into the last byte. Group 0 of either table is a sentinel and
// never addressed.
const GroupSize = 4

// Entry is one pidx record.
type Entry struct {
	Ptr  uint32
	Main uint8
	Sub  uint8
}

func (e Entry) IsZero() bool {
	return e.Ptr == 0 && e.Main == 0 && e.Sub == 0
}

func (e Entry) Count() int {
	return int(e.Main) + int(e.Sub)
}

// Range is an inclusive byte span. Lo > Hi slots occur in shipped data and
// are kept as is: the table codec is not the place to repair them.
type Range struct {
	Lo uint16
	Hi uint16
}

// DecodePidx reads every full group after the sentinel. An all-zero group
// means the record owns no spans.
func DecodePidx(data []byte) []Entry {
	if len(data) < 2*GroupSize {
		return nil
	}

	entries := make([]Entry, 0, len(data)/GroupSize-1)
	for i := GroupSize; i+GroupSize <= len(data); i += GroupSize {
		entries = append(entries, Entry{
			Ptr:  uint32(binary.LittleEndian.Uint16(data[i:])),
			Main: data[i+3] >> 4,
			Sub:  data[i+3] & 0xF,
		})
	}
	return entries
}

// DecodeParts resolves every entry's spans from the part table. A pointer
// or count leading out of the table is a hard error: unlike text slots
// there is no partial value worth salvaging here.
func DecodeParts(data []byte, entries []Entry) ([][]Range, error) {
	res := make([][]Range, len(entries))
	for i, e := range entries {
		if e.IsZero() {
			continue
		}

		count := e.Count()
		ranges := make([]Range, 0, count)
		for j := int(e.Ptr); j < int(e.Ptr)+count; j++ {
			k := j * GroupSize
			if k+GroupSize > len(data) {
				return nil, fmt.Errorf(
					"part table: record %d group %d out of bounds (%d byte table)", i, j, len(data))
			}
			ranges = append(ranges, Range{
				Lo: binary.LittleEndian.Uint16(data[k:]),
				Hi: binary.LittleEndian.Uint16(data[k+2:]),
			})
		}
		res[i] = ranges
	}
	return res, nil
}

// EncodeParts lays spans out group by group and returns the table together
// with each record's group pointer. Records without spans keep pointer 0.
func EncodeParts(ranges [][]Range) ([]byte, []uint32) {
	total := 0
	for _, rs := range ranges {
		total += len(rs)
	}

	p := packer.NewBytesPacker(make([]byte, GroupSize, (total+1)*GroupSize))
	pointers := make([]uint32, len(ranges))

	group := uint32(1)
	for i, rs := range ranges {
		if len(rs) == 0 {
			continue
		}
		pointers[i] = group
		for _, r := range rs {
			p.PutUint16(r.Lo)
			p.PutUint16(r.Hi)
		}
		group += uint32(len(rs))
	}
	return p.Data, pointers
}

// EncodePidx packs entries back after the zero sentinel group.
func EncodePidx(entries []Entry) []byte {
	p := packer.NewBytesPacker(make([]byte, GroupSize, (len(entries)+1)*GroupSize))
	for _, e := range entries {
		p.PutUint16(uint16(e.Ptr))
		p.PutByte(0)
		p.PutByte(e.Main<<4 | e.Sub)
	}
	return p.Data
}
