package text

import (
	"fmt"
	"os"
	"syscall"
)

// defaultScratchBlockSize is the minimum size of a newly allocated heap
// scratch block.
const defaultScratchBlockSize = 64 * 1024

// blockKind distinguishes the two storage kinds a block can be.
type blockKind uint8

const (
	blockHeap blockKind = iota
	blockMmap
)

// block is a contiguous byte region owned by a [Text]. mmap blocks back
// the original loaded file and are read-only; heap blocks are
// append-only scratch storage for inserted bytes. Once a byte is
// referenced by any piece it is never mutated again — heap blocks only
// ever grow their used count.
type block struct {
	kind blockKind
	data []byte // len(data) == capacity; only data[:used] is live
	used int
	next *block // heap blocks form a singly linked chain; unused on mmap
}

func (b *block) bytes() []byte {
	return b.data[:b.used]
}

func (b *block) free() int {
	return len(b.data) - b.used
}

// blockStore owns the original (possibly mmap'd) block and the scratch
// heap chain for a single [Text] instance.
type blockStore struct {
	original   *block // nil for an empty buffer
	mmapLen    int    // 0 if original is not mmap-backed
	scratchHd   *block
	scratchTl   *block
	maxScratch  int // injectable allocation ceiling for tests; 0 = unlimited
	blockSize   int // 0 = defaultScratchBlockSize
}

// loadOriginal maps path read-only into the original block. A zero-size
// or absent file yields an empty original block. Non-regular files (and
// any mmap failure) fall back to a heap copy of the content so Load
// never refuses a readable file purely because it isn't mmap-able.
func (bs *blockStore) loadOriginal(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: open %q: %w", ErrIOError, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %q: %w", ErrIOError, path, err)
	}

	size := info.Size()
	if size == 0 {
		return info, nil
	}

	if !info.Mode().IsRegular() {
		data, readErr := os.ReadFile(path) //nolint:gosec // path supplied by caller of Load
		if readErr != nil {
			return nil, fmt.Errorf("%w: read %q: %w", ErrIOError, path, readErr)
		}

		bs.original = &block{kind: blockHeap, data: data, used: len(data)}

		return info, nil
	}

	data, mmapErr := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if mmapErr != nil {
		raw, readErr := os.ReadFile(path) //nolint:gosec // path supplied by caller of Load
		if readErr != nil {
			return nil, fmt.Errorf("%w: read %q: %w", ErrIOError, path, readErr)
		}

		bs.original = &block{kind: blockHeap, data: raw, used: len(raw)}

		return info, nil
	}

	bs.original = &block{kind: blockMmap, data: data, used: len(data)}
	bs.mmapLen = len(data)

	return info, nil
}

// unmap releases the mmap mapping, if any. Safe to call multiple times.
func (bs *blockStore) unmap() {
	if bs.original == nil || bs.original.kind != blockMmap {
		return
	}

	_ = syscall.Munmap(bs.original.data)
	bs.original.data = nil
	bs.original = nil
	bs.mmapLen = 0
}

// appendScratch appends data to the scratch chain, allocating a new
// heap block when the tail has insufficient room, and returns the block
// and offset the bytes now live at.
func (bs *blockStore) appendScratch(data []byte) (*block, int, error) {
	if bs.scratchTl == nil || bs.scratchTl.free() < len(data) {
		size := bs.blockSize
		if size <= 0 {
			size = defaultScratchBlockSize
		}

		if len(data) > size {
			size = len(data)
		}

		if bs.maxScratch > 0 && bs.usedScratchBytes()+size > bs.maxScratch {
			return nil, 0, ErrOutOfMemory
		}

		nb := &block{kind: blockHeap, data: make([]byte, size)}

		if bs.scratchTl == nil {
			bs.scratchHd = nb
		} else {
			bs.scratchTl.next = nb
		}

		bs.scratchTl = nb
	}

	off := bs.scratchTl.used
	copy(bs.scratchTl.data[off:], data)
	bs.scratchTl.used += len(data)

	return bs.scratchTl, off, nil
}

func (bs *blockStore) usedScratchBytes() int {
	total := 0
	for b := bs.scratchHd; b != nil; b = b.next {
		total += b.used
	}

	return total
}

// mappedRange returns the base address and length of the live mmap'd
// original block; ok is false when there is no live mapping. See the
// SIGBUS guard in sigbus.go.
func (bs *blockStore) mappedRange() (base uintptr, length int, ok bool) {
	if bs.original == nil || bs.original.kind != blockMmap || len(bs.original.data) == 0 {
		return 0, 0, false
	}

	return addrOf(bs.original.data), bs.mmapLen, true
}
