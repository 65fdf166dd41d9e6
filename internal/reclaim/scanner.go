package reclaim

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Scan walks root recursively and returns every file whose full path matches
// filter, with size and modification time read by a single stat per file.
//
// Paths are built on root exactly as given, so "./logs" yields
// "./logs/a.log" rather than the cleaned "logs/a.log".
//
// Unreadable directories are logged and skipped. A failed stat of a matching
// file aborts the scan.
func Scan(fs afero.Fs, root string, filter *regexp.Regexp, log logrus.FieldLogger) ([]Candidate, error) {
	var candidates []Candidate
	cleanRoot := filepath.Clean(root)

	err := afero.Walk(fs, root, func(walked string, info os.FileInfo, err error) error {
		path, isRoot := underRoot(root, cleanRoot, walked)
		if err != nil {
			if info != nil && info.IsDir() {
				log.WithError(err).WithField("path", path).Warn("Skipping unreadable directory")
				return nil
			}
			if isRoot || filter.MatchString(path) {
				return fmt.Errorf("%w: %s: %v", ErrScan, path, err)
			}
			return nil
		}

		if info.IsDir() || !filter.MatchString(path) {
			return nil
		}

		stat, err := fs.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrScan, path, err)
		}
		// Symlinks to directories are listed as files by the walk.
		if stat.IsDir() {
			return nil
		}

		candidates = append(candidates, Candidate{
			Path:    path,
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("candidates", len(candidates)).Debug("Scan complete")
	return candidates, nil
}

// underRoot rebuilds a walked path on top of root as the caller spelled it.
func underRoot(root, cleanRoot, walked string) (string, bool) {
	rel, err := filepath.Rel(cleanRoot, walked)
	if err != nil {
		return walked, false
	}
	if rel == "." {
		return root, true
	}
	if root != "" && os.IsPathSeparator(root[len(root)-1]) {
		return root + rel, false
	}
	return root + string(filepath.Separator) + rel, false
}

// SortOldestFirst orders candidates by modification time. Files with equal
// modification times keep their scan order.
func SortOldestFirst(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ModTime.Before(candidates[j].ModTime)
	})
}
