package text

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/Duncaen/vis-go/internal/atomicfile"
	"github.com/Duncaen/vis-go/internal/vfs"
)

// SaveMethod selects how [Text.Begin] durably writes the logical text
// to disk.
type SaveMethod int

const (
	// SaveAuto tries SaveAtomic first, falling back to SaveInplace when
	// the target directory can't support a rename-based swap or the
	// target itself isn't a plain regular file.
	SaveAuto SaveMethod = iota
	SaveAtomic
	SaveInplace
)

const tempFilePrefix = ".tmp-"

// defaultFS is the filesystem a Text uses when its testFS override is
// nil (see [Text.fsys]); tests substitute a fault-injecting one there.
var defaultFS vfs.FS = vfs.NewReal()

// SaveHandle is an open multi-range save in progress, returned by
// [Text.Begin]. Exactly one of [SaveHandle.Commit] or
// [SaveHandle.Cancel] must be called to release it.
type SaveHandle struct {
	t      *Text
	method SaveMethod
	path   string
	tmp    string
	perm   os.FileMode
	file   vfs.File
	fs     vfs.FS
	done   bool
}

// Begin opens the destination (or a temp file, for SaveAtomic) and
// selects the concrete strategy SaveAuto resolves to.
func (t *Text) Begin(path string, method SaveMethod) (*SaveHandle, error) {
	if t.closed {
		return nil, ErrClosed
	}

	fsys := t.fsys()
	perm := os.FileMode(0o644)

	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	switch method {
	case SaveInplace:
		return t.beginInplace(fsys, path, perm)
	case SaveAtomic:
		h, err := t.beginAtomic(fsys, path, perm)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}

		return h, nil
	case SaveAuto:
		h, err := t.beginAtomic(fsys, path, perm)
		if err == nil {
			return h, nil
		}

		if !autoShouldFallback(fsys, path, err) {
			return nil, fmt.Errorf("%w: %w", ErrIOError, err)
		}

		return t.beginInplace(fsys, path, perm)
	default:
		return nil, fmt.Errorf("%w: unknown save method", ErrUnsupported)
	}
}

// autoShouldFallback reports whether an ATOMIC open failure is the
// kind SaveAuto papers over: a non-regular target, or a directory that
// can't host the rename.
func autoShouldFallback(fsys vfs.FS, path string, err error) bool {
	if info, statErr := fsys.Lstat(path); statErr == nil && !info.Mode().IsRegular() {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EXDEV, syscall.EACCES, syscall.EPERM, syscall.EROFS:
			return true
		}
	}

	return strings.Contains(err.Error(), "cross-device")
}

func (t *Text) beginAtomic(fsys vfs.FS, path string, perm os.FileMode) (*SaveHandle, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp := filepath.Join(dir, tempFilePrefix+base+"-"+strconv.Itoa(os.Getpid()))

	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}

	return &SaveHandle{t: t, method: SaveAtomic, path: path, tmp: tmp, perm: perm, file: f, fs: fsys}, nil
}

func (t *Text) beginInplace(fsys vfs.FS, path string, perm os.FileMode) (*SaveHandle, error) {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOError, err)
	}

	return &SaveHandle{t: t, method: SaveInplace, path: path, perm: perm, file: f, fs: fsys}, nil
}

// WriteRange writes r of the logical text to the handle's destination
// at its current file offset, returning the number of bytes written.
func (h *SaveHandle) WriteRange(r Range) (int, error) {
	if h.done {
		return 0, ErrClosed
	}

	data, err := h.t.BytesGet(r.Start, int(r.Len()))
	if err != nil {
		return 0, err
	}

	n, err := h.file.Write(data)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrIOError, err)
	}

	return n, nil
}

// Commit finalizes the save: for SaveAtomic, fsyncs and renames the
// temp file over the target and fsyncs the parent directory; for
// SaveInplace, fsyncs the truncated target in place. Either way it
// then takes an implicit [Text.Snapshot] and records the current
// revision as last-saved.
func (h *SaveHandle) Commit() error {
	if h.done {
		return ErrClosed
	}

	h.done = true

	if err := h.file.Sync(); err != nil {
		_ = h.file.Close()

		if h.method == SaveAtomic {
			_ = h.fs.Remove(h.tmp)
		}

		return fmt.Errorf("%w: sync: %w", ErrIOError, err)
	}

	if err := h.file.Close(); err != nil {
		if h.method == SaveAtomic {
			_ = h.fs.Remove(h.tmp)
		}

		return fmt.Errorf("%w: close: %w", ErrIOError, err)
	}

	if h.method == SaveAtomic {
		if err := h.fs.Rename(h.tmp, h.path); err != nil {
			_ = h.fs.Remove(h.tmp)

			return fmt.Errorf("%w: rename: %w", ErrIOError, err)
		}

		_ = syncParentDir(h.fs, filepath.Dir(h.path))
	}

	h.t.Snapshot()

	info, _ := h.fs.Stat(h.path)
	h.t.markSaved(info)

	return nil
}

// Cancel abandons the save, closing the handle and, for SaveAtomic,
// removing the temp file. The target file (if any) is left untouched.
func (h *SaveHandle) Cancel() error {
	if h.done {
		return nil
	}

	h.done = true

	_ = h.file.Close()

	if h.method == SaveAtomic {
		_ = h.fs.Remove(h.tmp)
	}

	return nil
}

func syncParentDir(fsys vfs.FS, dir string) error {
	d, err := fsys.Open(dir)
	if err != nil {
		return errors.Join(atomicfile.ErrDirSync, err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return errors.Join(atomicfile.ErrDirSync, err)
	}

	return nil
}

// Save writes the whole logical text to path using [SaveAuto].
func (t *Text) Save(path string) error {
	return t.SaveRange(Range{Start: 0, End: t.size}, path)
}

// SaveRange writes r of the logical text to path using [SaveAuto].
// Unlike the multi-range Begin/WriteRange/Commit lifecycle, this
// single-shot form routes the ATOMIC case through
// internal/atomicfile, directly exercising natefinch/atomic.
func (t *Text) SaveRange(r Range, path string) error {
	if t.closed {
		return ErrClosed
	}

	data, err := t.BytesGet(r.Start, int(r.Len()))
	if err != nil {
		return err
	}

	fsys := t.fsys()
	perm := os.FileMode(0o644)

	if info, statErr := fsys.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	useInplace := false
	if info, lstatErr := fsys.Lstat(path); lstatErr == nil && !info.Mode().IsRegular() {
		useInplace = true
	}

	if !useInplace {
		switch err := atomicfile.NewWriter(fsys).Write(path, data, perm); {
		case err == nil, errors.Is(err, atomicfile.ErrDirSync):
			// Rename already landed either way; a dir-sync failure is
			// treated as a soft failure.
		case autoShouldFallback(fsys, path, err):
			useInplace = true
		default:
			return fmt.Errorf("%w: %w", ErrIOError, err)
		}
	}

	if useInplace {
		return t.saveInplaceBytes(path, perm, data)
	}

	t.Snapshot()

	info, _ := fsys.Stat(path)
	t.markSaved(info)

	return nil
}

func (t *Text) saveInplaceBytes(path string, perm os.FileMode, data []byte) error {
	f, err := t.fsys().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOError, err)
	}

	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		_ = f.Close()

		return fmt.Errorf("%w: %w", ErrIOError, err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()

		return fmt.Errorf("%w: %w", ErrIOError, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIOError, err)
	}

	t.Snapshot()

	info, _ := t.fsys().Stat(path)
	t.markSaved(info)

	return nil
}

// WriteTo writes the whole logical text to an already-open file,
// matching a POSIX fd-oriented write(fd) operation.
func (t *Text) WriteTo(f *os.File) (int64, error) {
	return t.WriteRangeTo(f, Range{Start: 0, End: t.size})
}

// WriteRangeTo writes r of the logical text to an already-open file at
// its current offset.
func (t *Text) WriteRangeTo(f *os.File, r Range) (int64, error) {
	data, err := t.BytesGet(r.Start, int(r.Len()))
	if err != nil {
		return 0, err
	}

	n, err := f.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("%w: %w", ErrIOError, err)
	}

	return int64(n), nil
}

func (t *Text) fsys() vfs.FS {
	if t.testFS != nil {
		return t.testFS
	}

	return defaultFS
}

// discardStaleAtomicTemp looks for temp files a prior, never-completed
// [Text.Begin]/[SaveHandle.Commit] ATOMIC save left behind next to
// path (named "<tempFilePrefix><base>-<pid>") and removes them.
//
// Because the commit rename is atomic, a temp file that is still
// present at the next Load necessarily means that rename never ran —
// there is no way to tell a completed-but-unrenamed write apart from a
// half-written one without a completion marker this format doesn't
// have, so the only safe move is to discard it, the same way
// [atomicfile.Writer.Write]'s own cleanup discards a temp file on any
// failure rather than ever promoting it over the real target.
// Promoting the larger of the two, as an earlier version of this
// function did, could silently replace an intact target with a
// truncated write, which is exactly what the save pipeline promises
// never happens.
//
// This only ever cleans up temp files from the Begin/Commit lifecycle;
// [Text.Save]/[Text.SaveRange]'s single-shot path on a real filesystem
// delegates to natefinch/atomic, which names its own temp files and
// already removes them itself on any failure (see
// internal/atomicfile).
func discardStaleAtomicTemp(fsys vfs.FS, path string) {
	if path == "" {
		return
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	prefix := tempFilePrefix + base + "-"

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}

		_ = fsys.Remove(filepath.Join(dir, e.Name()))
	}
}
