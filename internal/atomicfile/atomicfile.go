// Package atomicfile implements the temp-file-plus-rename durable
// write used by the text package's ATOMIC save strategy, grounded on
// the reference AtomicWriter this module adapts (see DESIGN.md):
// write to a temp file in the target's directory, fsync it, rename it
// over the target, then fsync the parent directory. A failure in that
// last step is reported distinctly (ErrDirSync) since the rename has
// already landed by that point.
package atomicfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	upstream "github.com/natefinch/atomic"

	"github.com/Duncaen/vis-go/internal/vfs"
)

// ErrDirSync indicates the parent directory could not be synced after
// rename. The new file is in place but its durability in the face of
// a crash immediately afterward is not guaranteed.
var ErrDirSync = errors.New("atomicfile: parent directory sync failed")

// tempPrefix is the naming convention used for temp files in
// writeVia, this package's own fallback path for injectable (test)
// filesystems. The real-filesystem path delegates to natefinch/atomic,
// which names (and cleans up) its own temp files independently. The
// names writeVia makes ("<prefix><base>-<seq>") have the same shape as
// the Begin/Commit lifecycle's "<prefix><base>-<pid>" names, so the
// text package's stale-temp-file cleanup at Load removes a leftover
// one of either kind.
const tempPrefix = ".tmp-"

var seq atomic.Uint64

// Writer performs atomic, durable file writes. The zero value uses the
// real filesystem; tests substitute a fault-injecting [vfs.FS] via
// NewWriter to exercise partial-failure recovery paths.
type Writer struct {
	fs vfs.FS
}

// NewWriter returns a Writer backed by fsys. A nil fsys uses the real
// filesystem.
func NewWriter(fsys vfs.FS) *Writer {
	if fsys == nil {
		fsys = vfs.NewReal()
	}

	return &Writer{fs: fsys}
}

// Write durably replaces path's content with data.
//
// When w is backed by the real filesystem, this delegates straight to
// natefinch/atomic.WriteFile for the core temp-write-rename dance, then
// separately fsyncs the parent directory (an extra durability step
// that library does not perform). When w is backed by an injectable
// [vfs.FS] (tests), the whole pipeline is reimplemented against that
// abstraction so fault injection can reach every step.
func (w *Writer) Write(path string, data []byte, perm os.FileMode) error {
	if _, ok := w.fs.(*vfs.Real); ok || w.fs == nil {
		if err := upstream.WriteFile(path, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("atomicfile: %w", err)
		}

		if err := os.Chmod(path, perm); err != nil {
			return fmt.Errorf("atomicfile: chmod %q: %w", path, err)
		}

		return syncDir(vfs.NewReal(), filepath.Dir(path))
	}

	return w.writeVia(path, data, perm)
}

func (w *Writer) writeVia(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmpPath := filepath.Join(dir, fmt.Sprintf("%s%s-%d", tempPrefix, base, seq.Add(1)))

	tmpFile, err := w.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("atomicfile: create temp file: %w", err)
	}

	cleanup := func() {
		_ = tmpFile.Close()
		_ = w.fs.Remove(tmpPath)
	}

	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		cleanup()

		return fmt.Errorf("atomicfile: write temp file: %w", err)
	}

	if err := tmpFile.Chmod(perm); err != nil {
		cleanup()

		return fmt.Errorf("atomicfile: chmod temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		cleanup()

		return fmt.Errorf("atomicfile: sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = w.fs.Remove(tmpPath)

		return fmt.Errorf("atomicfile: close temp file: %w", err)
	}

	if err := w.fs.Rename(tmpPath, path); err != nil {
		_ = w.fs.Remove(tmpPath)

		return fmt.Errorf("atomicfile: rename: %w", err)
	}

	return syncDir(w.fs, dir)
}

func syncDir(fsys vfs.FS, dir string) error {
	d, err := fsys.Open(dir)
	if err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("open dir %q: %w", dir, err))
	}

	defer d.Close()

	if err := d.Sync(); err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("sync dir %q: %w", dir, err))
	}

	return nil
}
