// Package atomicfile writes files through a temp-file-then-rename sequence
// so readers never observe a partial write.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteFile writes data to path atomically. The bytes go to a temporary
// file in the target's directory, are synced to disk, and the temp file is
// renamed over the target. On any failure before the rename the temp file
// is removed and the previous target content stays intact.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "atomicfile: create temp in %s", dir)
	}
	tmpName := tmp.Name()

	cleanup := func(err error, action string) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "atomicfile: %s %s", action, tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err, "write")
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err, "sync")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "atomicfile: close %s", tmpName)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "atomicfile: chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "atomicfile: rename to %s", path)
	}
	return nil
}
