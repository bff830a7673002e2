package certificate

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"certdesk/utils"
)

// FileStore keeps generated certificate files.
type FileStore interface {
	// Write stores data under name, replacing any previous file, and returns
	// the public path the file is served from.
	Write(name string, data []byte) (string, error)
	// List returns the names of all stored PDF files.
	List() ([]string, error)
}

// LocalFileStore writes certificates into Dir, served under PublicPath.
type LocalFileStore struct {
	Dir        string
	PublicPath string
}

func (s LocalFileStore) Write(name string, data []byte) (string, error) {
	if err := utils.WriteFileAtomic(s.Dir, name, data); err != nil {
		return "", err
	}
	return utils.GetFileURL(s.PublicPath, name), nil
}

func (s LocalFileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// fileOf returns the file name part of a stored public path.
func fileOf(publicPath string) string {
	return path.Base(publicPath)
}
