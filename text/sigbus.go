package text

import "unsafe"

// addrOf returns the starting address of a byte slice's backing array.
// Used only to compute membership ranges for the SIGBUS guard below; the
// returned value is never dereferenced through unsafe.Pointer arithmetic
// outside this file.
func addrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}

	return uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // address membership check only
}

// IsInMappedRegion reports whether addr falls within the byte range of
// the text's live memory-mapped original block, if any.
//
// This is the SIGBUS guard: if an external
// process truncates the mmap'd file while this Text holds live
// references into it, reads fault with SIGBUS. The engine installs no
// signal handler itself — a host process-level handler consults this
// query to decide whether a given fault address belongs to a mapping it
// knows how to recover from (by turning the fault into an ErrIOError
// instead of crashing). Hosts that never mmap input files (e.g. one
// that always reads files into heap memory) can simply ignore this
// query; it always returns false when there is no live mapping.
func (t *Text) IsInMappedRegion(addr uintptr) bool {
	base, length, ok := t.blocks.mappedRange()
	if !ok {
		return false
	}

	return addr >= base && addr < base+uintptr(length)
}
