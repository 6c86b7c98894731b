package text

import "errors"

// Sentinel errors returned by package text. Callers should check these
// with [errors.Is]; IOError-class failures wrap the underlying OS error
// and can additionally be unwrapped with [errors.As].
var (
	// ErrInvalidPosition reports a position or range outside the current text.
	ErrInvalidPosition = errors.New("text: invalid position")

	// ErrOutOfMemory reports that scratch block allocation failed.
	ErrOutOfMemory = errors.New("text: out of memory")

	// ErrIOError reports a read, write, rename, or stat failure. The
	// underlying OS error is always available via errors.Unwrap.
	ErrIOError = errors.New("text: io error")

	// ErrUnsupported reports that a save method was refused for this
	// file (e.g. ATOMIC requested for a non-regular-file target).
	ErrUnsupported = errors.New("text: unsupported save method")

	// ErrFormatError reports that a format string could not be rendered.
	ErrFormatError = errors.New("text: format error")

	// ErrClosed reports use of a Text after Free.
	ErrClosed = errors.New("text: use after free")
)
