// Package media locates series folders and selects the offset/limit window
// processed by a single run.
package media

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ShowFile is the root record distinguishing a series folder from a plain
// directory.
const ShowFile = "tvshow.nfo"

// ShowFolders walks root and returns every directory containing a tvshow.nfo,
// sorted lexicographically for a deterministic processing order.
func ShowFolders(root string) ([]string, error) {
	var folders []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ShowFile {
			folders = append(folders, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(folders)
	return folders, nil
}

// SelectWindow clamps offset to the list length and takes up to limit folders
// from there (limit 0 means everything after the offset). The skipped counts
// always satisfy skippedOffset + skippedLimit + len(selected) == len(folders).
func SelectWindow(folders []string, offset, limit int) (selected []string, skippedOffset, skippedLimit int) {
	total := len(folders)

	start := offset
	if start > total {
		start = total
	}
	skippedOffset = start

	end := total
	if limit > 0 && start+limit < total {
		end = start + limit
	}
	skippedLimit = total - end

	return folders[start:end], skippedOffset, skippedLimit
}

// EpisodeFiles lists the .nfo files in dir other than the root record, in
// directory order.
func EpisodeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".nfo") && name != ShowFile {
			files = append(files, name)
		}
	}
	return files, nil
}
