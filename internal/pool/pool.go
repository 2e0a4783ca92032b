// Package pool provides bucketed sync.Pool instances for the scratch memory
// of the tile coders: output byte buffers and coefficient blocks. Buffers
// are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for byte buffers.
const (
	Size1K   = 1024
	Size16K  = 16384
	Size256K = 262144
	Size1M   = 1048576
)

// Block sizes for coefficient scratch, one per transform size.
const (
	Block4x4   = 16
	Block8x8   = 64
	Block16x16 = 256
	Block32x32 = 1024
)

// bucketIndex returns the byte pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size1K:
		return 0
	case size <= Size16K:
		return 1
	case size <= Size256K:
		return 2
	default:
		return 3
	}
}

// blockIndex returns the coefficient pool index for a block length.
func blockIndex(n int) int {
	switch {
	case n <= Block4x4:
		return 0
	case n <= Block8x8:
		return 1
	case n <= Block16x16:
		return 2
	default:
		return 3
	}
}

var (
	sizes      = [4]int{Size1K, Size16K, Size256K, Size1M}
	blockSizes = [4]int{Block4x4, Block8x8, Block16x16, Block32x32}

	pools      [4]sync.Pool
	blockPools [4]sync.Pool
)

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
	for i := range blockPools {
		n := blockSizes[i]
		blockPools[i] = sync.Pool{
			New: func() any {
				b := make([]int32, n)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size from the pool.
// The returned slice has length == size and may have a larger capacity.
// The caller must call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. Slices smaller than Size1K are not
// pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size1K {
		return
	}
	b = b[:c]
	pools[bucketIndex(c)].Put(&b)
}

// GetBlock returns a zeroed int32 slice of length n for one transform
// block. Blocks larger than 32x32 are allocated directly.
func GetBlock(n int) []int32 {
	if n > Block32x32 {
		return make([]int32, n)
	}
	bp := blockPools[blockIndex(n)].Get().(*[]int32)
	b := (*bp)[:n]
	clear(b)
	return b
}

// PutBlock returns a block obtained from GetBlock.
func PutBlock(b []int32) {
	c := cap(b)
	if c < Block4x4 || c > Block32x32 {
		return
	}
	idx := blockIndex(c)
	if blockSizes[idx] != c {
		return
	}
	b = b[:c]
	blockPools[idx].Put(&b)
}
