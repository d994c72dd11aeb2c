package disk

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/metric"
)

const storeHeaderSize = 16

// Store keeps a set of named artifacts in one snapshot file. Layout:
// a 16-byte header holding registry position and length, then the blocks,
// then the registry. Blocks are written in sorted name order, so equal
// inputs produce byte-identical snapshots.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Store) Save(artifacts map[string][]byte, codec Codec) (err error) {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, consts.DefaultFilePermission)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := f.Seek(storeHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	var registry []byte
	written := 0
	pos := uint64(storeHeaderSize)
	for _, name := range names {
		raw := artifacts[name]
		block, used, err := compressBlock(codec, raw)
		if err != nil {
			return fmt.Errorf("snapshot %q: %w", name, err)
		}
		if _, err := f.Write(block); err != nil {
			return fmt.Errorf("snapshot %q: %w", name, err)
		}

		entry := NewRegistryEntry(name, pos, uint32(len(raw)), uint32(len(block)), used)
		registry = append(registry, entry...)
		pos += uint64(len(block))
		written += len(block)
	}

	if _, err := f.Write(registry); err != nil {
		return fmt.Errorf("snapshot registry: %w", err)
	}

	header := make([]byte, storeHeaderSize)
	binary.LittleEndian.PutUint64(header, pos)
	binary.LittleEndian.PutUint64(header[8:], uint64(len(registry)))
	if _, err := f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("snapshot header: %w", err)
	}

	metric.SnapshotWrittenBytesTotal.Add(float64(written + len(registry) + storeHeaderSize))
	logger.Info("snapshot saved",
		zap.String("path", s.path),
		zap.Int("artifacts", len(names)),
		zap.String("codec", codec.String()),
		zap.Uint64("size", pos+uint64(len(registry))))
	return nil
}

func (s *Store) Load() (_ map[string][]byte, err error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	size := uint64(stat.Size())

	header := make([]byte, storeHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	registryPos := binary.LittleEndian.Uint64(header)
	registryLen := binary.LittleEndian.Uint64(header[8:])
	if registryPos < storeHeaderSize || registryPos+registryLen > size {
		return nil, fmt.Errorf("wrong snapshot format: registry at %d+%d, file of %d bytes",
			registryPos, registryLen, size)
	}

	rawRegistry := make([]byte, registryLen)
	if _, err := f.ReadAt(rawRegistry, int64(registryPos)); err != nil {
		return nil, fmt.Errorf("snapshot registry: %w", err)
	}
	entries, err := parseRegistry(rawRegistry)
	if err != nil {
		return nil, fmt.Errorf("snapshot registry: %w", err)
	}

	read := storeHeaderSize + len(rawRegistry)
	artifacts := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.Pos() < storeHeaderSize || e.Pos()+uint64(e.Len()) > registryPos {
			return nil, fmt.Errorf("wrong snapshot format: block %q at %d+%d crosses registry at %d",
				e.Name(), e.Pos(), e.Len(), registryPos)
		}

		block := make([]byte, e.Len())
		if _, err := f.ReadAt(block, int64(e.Pos())); err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", e.Name(), err)
		}
		read += len(block)

		raw, err := decompressBlock(e.Codec(), block, int(e.RawLen()))
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", e.Name(), err)
		}
		artifacts[e.Name()] = raw
	}

	metric.SnapshotReadBytesTotal.Add(float64(read))
	return artifacts, nil
}
