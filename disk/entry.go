package disk

import (
	"encoding/binary"
	"fmt"
)

const (
	offsetEntryCodec   = 0  // 1 byte  (C) codec
	offsetEntryLen     = 1  // 4 bytes (L) stored length
	offsetEntryRawLen  = 5  // 4 bytes (R) raw length
	offsetEntryPos     = 9  // 8 bytes (P) block position
	offsetEntryNameLen = 17 // 2 bytes (N) name length, name bytes follow

	registryEntryFixedSize = 19
)

// RegistryEntry format: C : LLLL : RRRR : PPPP-PPPP : NN : name
// Entries are variable length, the name sits after the fixed part.

type RegistryEntry []byte

func NewRegistryEntry(name string, pos uint64, rawLen, storedLen uint32, codec Codec) RegistryEntry {
	e := make(RegistryEntry, registryEntryFixedSize+len(name))
	e.SetCodec(codec)
	e.SetLen(storedLen)
	e.SetRawLen(rawLen)
	e.SetPos(pos)
	binary.LittleEndian.PutUint16(e[offsetEntryNameLen:], uint16(len(name)))
	copy(e[registryEntryFixedSize:], name)
	return e
}

func (e RegistryEntry) Codec() Codec {
	return Codec(e[offsetEntryCodec])
}

func (e RegistryEntry) SetCodec(c Codec) {
	e[offsetEntryCodec] = byte(c)
}

func (e RegistryEntry) Len() uint32 {
	return binary.LittleEndian.Uint32(e[offsetEntryLen:])
}

func (e RegistryEntry) SetLen(v uint32) {
	binary.LittleEndian.PutUint32(e[offsetEntryLen:], v)
}

func (e RegistryEntry) RawLen() uint32 {
	return binary.LittleEndian.Uint32(e[offsetEntryRawLen:])
}

func (e RegistryEntry) SetRawLen(v uint32) {
	binary.LittleEndian.PutUint32(e[offsetEntryRawLen:], v)
}

func (e RegistryEntry) Pos() uint64 {
	return binary.LittleEndian.Uint64(e[offsetEntryPos:])
}

func (e RegistryEntry) SetPos(v uint64) {
	binary.LittleEndian.PutUint64(e[offsetEntryPos:], v)
}

func (e RegistryEntry) Name() string {
	n := int(binary.LittleEndian.Uint16(e[offsetEntryNameLen:]))
	return string(e[registryEntryFixedSize : registryEntryFixedSize+n])
}

func (e RegistryEntry) Size() int {
	return registryEntryFixedSize + int(binary.LittleEndian.Uint16(e[offsetEntryNameLen:]))
}

func parseRegistry(data []byte) ([]RegistryEntry, error) {
	var entries []RegistryEntry
	for len(data) > 0 {
		if len(data) < registryEntryFixedSize {
			return nil, fmt.Errorf("wrong registry format: %d trailing bytes", len(data))
		}
		size := RegistryEntry(data).Size()
		if len(data) < size {
			return nil, fmt.Errorf("wrong registry format: entry of %d bytes, %d left", size, len(data))
		}
		entries = append(entries, RegistryEntry(data[:size]))
		data = data[size:]
	}
	return entries, nil
}
