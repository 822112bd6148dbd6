package file

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/seqops/stagehand/common"
)

// PathExists reports whether the given path exists.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat %s", path)
}

// IsDir reports whether the given path exists and is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat %s", path)
	}
	return info.IsDir(), nil
}

// CreateDir creates the directory (and parents) if it does not exist.
func CreateDir(path string) error {
	exists, err := PathExists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := os.MkdirAll(path, common.FileMode0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}
	return nil
}

// CreateFileDir ensures the parent directory of filePath exists.
func CreateFileDir(filePath string) error {
	return CreateDir(filepath.Dir(filePath))
}

// WriteFile writes content to filePath, creating parent directories as
// needed. Run reports are persisted through this helper.
func WriteFile(filePath string, content []byte) error {
	if err := CreateFileDir(filePath); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, content, common.FileMode0644); err != nil {
		return errors.Wrapf(err, "failed to write to file %s", filePath)
	}
	return nil
}

// CopyFile copies src to dest with the given mode, creating parent
// directories of dest as needed.
func CopyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open source file %s", src)
	}
	defer in.Close()

	if err := CreateFileDir(dest); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "failed to copy %s to %s", src, dest)
	}
	return nil
}

// ReadFile reads the whole file at filePath.
func ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", filePath)
	}
	return data, nil
}
