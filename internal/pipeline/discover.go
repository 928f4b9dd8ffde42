package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover lists the regular files directly inside dir whose extension
// matches one of exts (lowercase, with leading dot), sorted by name.
// Subdirectories, including the output folder, are not descended into.
func Discover(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !want[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks so a link to a video counts, a link to a
		// directory does not.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath returns where input's result is written: the same file name
// inside outDir.
func OutputPath(outDir, input string) string {
	return filepath.Join(outDir, filepath.Base(input))
}
