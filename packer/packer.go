package packer

import (
	"encoding/binary"
	"fmt"
)

// BytesPacker appends little-endian fields to Data.
type BytesPacker struct {
	Data []byte
}

func NewBytesPacker(buf []byte) *BytesPacker {
	return &BytesPacker{Data: buf}
}

func (p *BytesPacker) PutByte(v byte) {
	p.Data = append(p.Data, v)
}

func (p *BytesPacker) PutUint16(v uint16) {
	p.Data = binary.LittleEndian.AppendUint16(p.Data, v)
}

func (p *BytesPacker) PutUint32(v uint32) {
	p.Data = binary.LittleEndian.AppendUint32(p.Data, v)
}

func (p *BytesPacker) PutUint64(v uint64) {
	p.Data = binary.LittleEndian.AppendUint64(p.Data, v)
}

func (p *BytesPacker) PutBytes(v []byte) {
	p.Data = append(p.Data, v...)
}

func (p *BytesPacker) PutStringWithSize(v string) {
	p.PutUint16(uint16(len(v)))
	p.Data = append(p.Data, v...)
}

// BytesUnpacker consumes little-endian fields from a buffer. Every getter
// fails on a short buffer instead of panicking so callers can surface
// truncated files as errors.
type BytesUnpacker struct {
	data []byte
	pos  int
}

func NewBytesUnpacker(data []byte) *BytesUnpacker {
	return &BytesUnpacker{data: data}
}

func (u *BytesUnpacker) Len() int {
	return len(u.data) - u.pos
}

func (u *BytesUnpacker) next(n int) ([]byte, error) {
	if u.Len() < n {
		return nil, fmt.Errorf("unpack: need %d bytes, %d left", n, u.Len())
	}
	b := u.data[u.pos : u.pos+n]
	u.pos += n
	return b, nil
}

func (u *BytesUnpacker) NextByte() (byte, error) {
	b, err := u.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (u *BytesUnpacker) NextUint16() (uint16, error) {
	b, err := u.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (u *BytesUnpacker) NextUint32() (uint32, error) {
	b, err := u.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (u *BytesUnpacker) NextUint64() (uint64, error) {
	b, err := u.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (u *BytesUnpacker) NextBytes(n int) ([]byte, error) {
	return u.next(n)
}

func (u *BytesUnpacker) NextStringWithSize() (string, error) {
	n, err := u.NextUint16()
	if err != nil {
		return "", err
	}
	b, err := u.next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
