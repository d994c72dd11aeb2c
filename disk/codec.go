package disk

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type Codec byte

const (
	CodecNo Codec = iota
	CodecLZ4
	CodecZSTD
)

func ParseCodec(name string) (Codec, error) {
	switch name {
	case "none":
		return CodecNo, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	}
	return 0, fmt.Errorf("unknown snapshot codec %q", name)
}

func (c Codec) String() string {
	switch c {
	case CodecNo:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	}
	return fmt.Sprintf("codec(%d)", byte(c))
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	if zstdEncoder, err = zstd.NewWriter(nil); err != nil {
		panic(err)
	}
	if zstdDecoder, err = zstd.NewReader(nil); err != nil {
		panic(err)
	}
}

// compressBlock encodes src with the requested codec and reports the codec
// actually used: blocks that do not shrink are stored raw.
func compressBlock(c Codec, src []byte) ([]byte, Codec, error) {
	switch c {
	case CodecNo:
		return src, CodecNo, nil

	case CodecLZ4:
		bound := lz4.CompressBlockBound(len(src))
		if bound <= 0 {
			return src, CodecNo, nil
		}
		var compressor lz4.Compressor
		dst := make([]byte, bound)
		n, err := compressor.CompressBlock(src, dst)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 block: %w", err)
		}
		if n == 0 || n >= len(src) {
			return src, CodecNo, nil
		}
		return dst[:n], CodecLZ4, nil

	case CodecZSTD:
		dst := zstdEncoder.EncodeAll(src, nil)
		if len(dst) >= len(src) {
			return src, CodecNo, nil
		}
		return dst, CodecZSTD, nil
	}
	return nil, 0, fmt.Errorf("unknown codec %d", byte(c))
}

func decompressBlock(c Codec, src []byte, rawLen int) ([]byte, error) {
	switch c {
	case CodecNo:
		if len(src) != rawLen {
			return nil, fmt.Errorf("raw block length %d, registry says %d", len(src), rawLen)
		}
		return src, nil

	case CodecLZ4:
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 block: %w", err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("lz4 block inflated to %d, registry says %d", n, rawLen)
		}
		return dst, nil

	case CodecZSTD:
		dst, err := zstdDecoder.DecodeAll(src, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("zstd block: %w", err)
		}
		if len(dst) != rawLen {
			return nil, fmt.Errorf("zstd block inflated to %d, registry says %d", len(dst), rawLen)
		}
		return dst, nil
	}
	return nil, fmt.Errorf("unknown codec %d", byte(c))
}
