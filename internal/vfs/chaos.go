package vfs

import (
	"math/rand/v2"
	"os"
	"sync"
	"syscall"
)

// ChaosConfig controls fault injection probabilities, each a float64
// from 0.0 (never) to 1.0 (always). The zero value injects nothing.
// Trimmed from a much larger reference fault-injector (see DESIGN.md)
// down to the failure modes the save pipeline actually branches on.
type ChaosConfig struct {
	OpenFailRate   float64
	WriteFailRate  float64
	SyncFailRate   float64
	RenameFailRate float64
	DirSyncFail    bool // forces the parent-directory fsync step to fail
	RenameErrno    syscall.Errno
}

// Chaos wraps an [FS] and injects failures per [ChaosConfig] ahead of
// delegating to it, for exercising the save pipeline's fallback and
// error-reporting paths without depending on real disk conditions.
type Chaos struct {
	under FS
	cfg   ChaosConfig
	mu    sync.Mutex // guards rng, so Chaos stays safe for concurrent use
	rng   *rand.Rand
}

// NewChaos wraps under with the given fault rates. seed makes fault
// selection reproducible across test runs.
func NewChaos(under FS, cfg ChaosConfig, seed uint64) *Chaos {
	return &Chaos{under: under, cfg: cfg, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b9))}
}

func (c *Chaos) chance(rate float64) bool {
	if rate <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) Open(path string) (File, error) {
	if c.chance(c.cfg.OpenFailRate) {
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.EIO}
	}

	f, err := c.under.Open(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{under: f, c: c}, nil
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if c.chance(c.cfg.OpenFailRate) {
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.EIO}
	}

	f, err := c.under.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return &chaosFile{under: f, c: c}, nil
}

func (c *Chaos) ReadFile(path string) ([]byte, error) { return c.under.ReadFile(path) }
func (c *Chaos) Lstat(path string) (os.FileInfo, error) { return c.under.Lstat(path) }
func (c *Chaos) Stat(path string) (os.FileInfo, error)  { return c.under.Stat(path) }
func (c *Chaos) Remove(path string) error               { return c.under.Remove(path) }

func (c *Chaos) Rename(oldpath, newpath string) error {
	if c.chance(c.cfg.RenameFailRate) {
		errno := c.cfg.RenameErrno
		if errno == 0 {
			errno = syscall.EIO
		}

		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errno}
	}

	return c.under.Rename(oldpath, newpath)
}

type chaosFile struct {
	under File
	c     *Chaos
}

func (f *chaosFile) Read(p []byte) (int, error) { return f.under.Read(p) }

func (f *chaosFile) Write(p []byte) (int, error) {
	if f.c.chance(f.c.cfg.WriteFailRate) {
		return 0, &os.PathError{Op: "write", Err: syscall.EIO}
	}

	return f.under.Write(p)
}

func (f *chaosFile) Close() error { return f.under.Close() }

func (f *chaosFile) Seek(offset int64, whence int) (int64, error) {
	return f.under.Seek(offset, whence)
}

func (f *chaosFile) Stat() (os.FileInfo, error) { return f.under.Stat() }

func (f *chaosFile) Sync() error {
	if f.c.chance(f.c.cfg.SyncFailRate) {
		return &os.PathError{Op: "sync", Err: syscall.EIO}
	}

	if f.c.cfg.DirSyncFail {
		// Only directory handles are ever synced purely for durability;
		// a handle that stats as a directory is our signal that this
		// Sync call is the parent-directory fsync in the save pipeline,
		// not the temp file's own data fsync.
		info, err := f.under.Stat()
		if err == nil && info.IsDir() {
			return &os.PathError{Op: "sync", Err: syscall.EIO}
		}
	}

	return f.under.Sync()
}

func (f *chaosFile) Chmod(mode os.FileMode) error { return f.under.Chmod(mode) }

var (
	_ FS   = (*Chaos)(nil)
	_ File = (*chaosFile)(nil)
)
