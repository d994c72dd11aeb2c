package bytespool

import (
	"math/bits"
	"sync"
)

// Buffer is a pooled byte slice. B keeps its capacity across reuse, len is
// set to the requested size on Acquire.
type Buffer struct {
	B     []byte
	class int
}

const (
	minClassBits = 6 // 64 B
	maxClassBits = 26
)

var pools [maxClassBits - minClassBits + 1]sync.Pool

func classOf(size int) int {
	if size <= 1<<minClassBits {
		return 0
	}
	return bits.Len(uint(size-1)) - minClassBits
}

// Acquire returns a zeroed buffer of the given size. Sizes above the top
// class are allocated directly and Release drops them.
func Acquire(size int) *Buffer {
	if size < 0 {
		size = 0
	}
	class := classOf(size)
	if class >= len(pools) {
		return &Buffer{B: make([]byte, size), class: -1}
	}

	buf, _ := pools[class].Get().(*Buffer)
	if buf == nil {
		buf = &Buffer{B: make([]byte, 1<<(class+minClassBits)), class: class}
	}
	buf.B = buf.B[:size]
	clear(buf.B)
	return buf
}

func Release(buf *Buffer) {
	if buf == nil || buf.class < 0 {
		return
	}
	buf.B = buf.B[:cap(buf.B)]
	pools[buf.class].Put(buf)
}
