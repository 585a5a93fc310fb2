package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "hbnb-tmp-"

	// DefaultPerm is the mode of a newly created store file.
	DefaultPerm os.FileMode = 0644
)

// writeFileAtomic replaces filename with data by writing a temp file in the
// same directory and renaming it over the target. When perm is zero the
// target keeps its current mode (DefaultPerm if it does not exist yet).
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultPerm
		if info, err := os.Stat(filename); err == nil {
			perm = info.Mode().Perm()
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	_, err = tmpFile.Write(data)
	if err == nil {
		err = tmpFile.Sync()
	}
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return fmt.Errorf("replace %s: permission denied: %w", filename, err)
		}
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	committed = true
	return nil
}
