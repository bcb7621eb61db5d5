// Package fsys is the byte-level file access used by the project store and
// the table readers. It sits on afero so tests can swap in a memory backend.
package fsys

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

type FileSystem interface {
	ReadText(path string) (string, error)
	ReadBytes(path string) ([]byte, error)
	Save(content, path string) error
	EnsureDir(path string) error
	Exists(path string) bool
	IsDir(path string) bool
	IsEmptyDir(path string) (bool, error)
}

// AccessError reports a failed read, write or directory creation.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("failed to %s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

type Disk struct {
	fs     afero.Fs
	logger *slog.Logger
}

// New wraps fs. Pass afero.NewOsFs() for the real disk.
func New(fs afero.Fs, logger *slog.Logger) *Disk {
	return &Disk{fs: fs, logger: logger}
}

func NewOS(logger *slog.Logger) *Disk {
	return New(afero.NewOsFs(), logger)
}

func (d *Disk) ReadBytes(path string) ([]byte, error) {
	d.logger.Debug("reading file", "path", path)
	b, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, &AccessError{Op: "read file", Path: path, Err: err}
	}
	return b, nil
}

func (d *Disk) ReadText(path string) (string, error) {
	b, err := d.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Disk) Save(content, path string) error {
	d.logger.Debug("writing file", "path", path)
	if err := d.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := afero.WriteFile(d.fs, path, []byte(content), 0o644); err != nil {
		return &AccessError{Op: "write file", Path: path, Err: err}
	}
	d.logger.Debug("wrote file", "path", path, "bytes", len(content))
	return nil
}

func (d *Disk) EnsureDir(path string) error {
	if err := d.fs.MkdirAll(path, 0o755); err != nil {
		return &AccessError{Op: "create directory", Path: path, Err: err}
	}
	return nil
}

func (d *Disk) Exists(path string) bool {
	_, err := d.fs.Stat(path)
	return err == nil
}

func (d *Disk) IsDir(path string) bool {
	ok, err := afero.IsDir(d.fs, path)
	return err == nil && ok
}

func (d *Disk) IsEmptyDir(path string) (bool, error) {
	ok, err := afero.IsEmpty(d.fs, path)
	if err != nil {
		return false, &AccessError{Op: "read directory", Path: path, Err: err}
	}
	return ok, nil
}

var _ FileSystem = (*Disk)(nil)

// IsNotExist reports whether err came from a missing file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
