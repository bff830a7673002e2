package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteFileAtomic writes data to destDir/name through a temporary file and a
// rename, so readers see either the old file or the new one.
func WriteFileAtomic(destDir, name string, data []byte) error {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(destDir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, filepath.Join(destDir, name))
}

// GetFileURL joins the public path a directory is served under with a file name.
func GetFileURL(publicPath, name string) string {
	if name == "" {
		return ""
	}
	base := strings.Trim(publicPath, "/")
	if base == "" {
		return "/" + name
	}
	return "/" + base + "/" + name
}
