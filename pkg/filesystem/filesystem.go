// Package filesystem provides the afero filesystems appsync runs on and the
// file helpers shared by packages that persist data.
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/spf13/afero"
)

// NewOS returns the real operating system filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an in-memory filesystem, used by tests
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Exists reports whether path exists on fs
func Exists(fs afero.Fs, path string) (bool, error) {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	return ok, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// over path, so readers never observe a partially written file. The mode of an
// existing file is kept; perm applies to new files.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create directory %s", dir)
	}

	if info, err := fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create temporary file in %s", dir)
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", tmpName)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot set mode on %s", tmpName)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path)
	}
	return nil
}
