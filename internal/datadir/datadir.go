package datadir

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// globalDirName is the subdirectory of a data directory holding cluster-global files.
	globalDirName = "global"

	// ControlFileName is the name of the control record file inside the global subdirectory.
	ControlFileName = "pg_control"
)

// ControlFilePath returns the path of the control record file inside the given data directory.
func ControlFilePath(dataDir string) string {
	return filepath.Join(dataDir, globalDirName, ControlFileName)
}

// ReadControlFile reads the raw control record bytes from the given data directory. When the file does not exist,
// the odds are the data directory path is wrong, so the error points that out.
func ReadControlFile(dataDir string) ([]byte, error) {
	filePath := ControlFilePath(dataDir)
	data, err := os.ReadFile(filePath) //nolint:gosec // The path is operator input by design.
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not open %q for reading (is the data directory path correct?): %w", filePath, err)
		}
		return nil, fmt.Errorf("reading control file %q: %w", filePath, err)
	}
	return data, nil
}

// Materialize makes sure the output data directory and its global subdirectory exist and writes the encoded control
// record into it in one operation. The directories are created when absent, their pre-existence is not an error. The
// control file itself is created with exclusive-create semantics: a pre-existing file is overwritten, which is
// reported through the overwritten return value so the caller can warn the operator. A failed or short write is an
// unrecoverable environment fault and is never retried.
func Materialize(dataDir string, encoded []byte) (overwritten bool, err error) {
	if err := ensureDirectory(dataDir); err != nil {
		return false, err
	}
	if err := ensureDirectory(filepath.Join(dataDir, globalDirName)); err != nil {
		return false, err
	}

	filePath := ControlFilePath(dataDir)
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // The path is operator input by design.
	if err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return false, fmt.Errorf("creating control file %q: %w", filePath, err)
		}
		overwritten = true
		file, err = os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // The path is operator input by design.
		if err != nil {
			return overwritten, fmt.Errorf("opening control file %q for writing: %w", filePath, err)
		}
	}

	written, err := file.Write(encoded)
	if err == nil && written != len(encoded) {
		err = io.ErrShortWrite
	}
	if err != nil {
		err = fmt.Errorf("writing control file %q: %w", filePath, err)
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return overwritten, err
	}
	if err := file.Close(); err != nil {
		return overwritten, fmt.Errorf("closing control file %q: %w", filePath, err)
	}

	MaterializeTotal.Inc()
	if overwritten {
		OverwriteTotal.Inc()
	}
	return overwritten, nil
}

// ensureDirectory creates the directory when it is absent. A directory which already exists is fine.
func ensureDirectory(directory string) error {
	if err := os.Mkdir(directory, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("creating directory %q: %w", directory, err)
	}
	return nil
}
