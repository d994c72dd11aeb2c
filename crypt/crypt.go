package crypt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/duelmod/cardtext/bytespool"
	"github.com/duelmod/cardtext/conf"
	"github.com/duelmod/cardtext/metric"
)

// The layer is obfuscation, not cryptography: every byte of the deflated
// stream is XORed with a keystream derived from the byte position and a
// small integer key. XOR makes the transform self-inverse, so Decode and
// Encode share applyKeystream.
const keystreamBias = 0x23D

var (
	// ErrDecode means the buffer did not inflate with the given key. With no
	// checksum in the format this is the only wrong-key signal there is.
	ErrDecode = errors.New("cipher: buffer rejected by inflate")
)

func applyKeystream(data []byte, key uint64) {
	for i := range data {
		v := (uint64(i) + key + keystreamBias) * key
		v ^= uint64(i % 7)
		data[i] ^= byte(v)
	}
}

// Decode strips the keystream from data and inflates the result. data is
// left untouched. A failure at any stage reports ErrDecode: the zlib header
// check rejects almost every wrong key after two bytes, so probing keys via
// Decode is cheap.
func Decode(data []byte, key uint64) ([]byte, error) {
	buf := bytespool.Acquire(len(data))
	defer bytespool.Release(buf)

	copy(buf.B, data)
	applyKeystream(buf.B, key)

	zr, err := zlib.NewReader(bytes.NewReader(buf.B))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	defer zr.Close()

	limit := int64(conf.MaxBlobSize)
	raw, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	if int64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: decoded size exceeds %s", ErrDecode, conf.MaxBlobSize)
	}

	metric.CipherDecodedBytesTotal.Add(float64(len(raw)))
	return raw, nil
}

// Encode deflates data and applies the keystream to the compressed stream,
// producing a buffer Decode accepts with the same key.
func Encode(data []byte, key uint64) ([]byte, error) {
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("cipher: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("cipher: deflate: %w", err)
	}

	enc := out.Bytes()
	applyKeystream(enc, key)

	metric.CipherEncodedBytesTotal.Add(float64(len(enc)))
	return enc, nil
}
