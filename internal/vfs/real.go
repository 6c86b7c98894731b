package vfs

import "os"

// Real implements [FS] as pure passthroughs to the os package.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real { return &Real{} }

func (Real) Open(path string) (File, error) { return os.Open(path) }

func (Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

func (Real) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (Real) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }

func (Real) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (Real) Remove(path string) error { return os.Remove(path) }

func (Real) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

var _ FS = Real{}
