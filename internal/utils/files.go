package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesWithExt lists the regular files directly inside dir whose
// extension is ext, compared case-insensitively. Subdirectories are not
// searched.
func FindFilesWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
