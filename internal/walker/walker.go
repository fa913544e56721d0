// Package walker builds the size index for a directory tree: files
// bucketed by size plus the list of directories seen, without reading
// any file content.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options controls which entries a walk collects.
type Options struct {
	// ExcludeFolders skips whole subtrees. Each entry is matched
	// case-insensitively as a substring of the directory's base name or
	// full path; entries containing glob metacharacters are matched as
	// doublestar patterns instead.
	ExcludeFolders []string

	// FileTypes is an extension allow-list (".jpg", ".mp4", ...). Empty
	// means all files pass.
	FileTypes []string

	// MinSize drops files smaller than this many bytes.
	MinSize int64

	// ScanSubfolders recurses below the root when true. Directories are
	// recorded either way.
	ScanSubfolders bool

	// IncludeHidden keeps dot-prefixed (and, on Windows,
	// attribute-hidden) entries.
	IncludeHidden bool
}

// FileEntry is one collected file with its stat size.
type FileEntry struct {
	Path string
	Size int64
}

// Result is the outcome of one tree walk.
type Result struct {
	// Groups buckets file paths by size in discovery order. Only files
	// whose size collides with another file can be duplicates, so buckets
	// of one are never hashed.
	Groups map[int64][]string

	// Files lists every bucketed file in discovery order. Consumers that
	// care about which path was seen first iterate this, not Groups.
	Files []FileEntry

	// Dirs lists every directory recorded, root first, in discovery
	// order.
	Dirs []string

	// FileCount is the number of files bucketed.
	FileCount int

	// Skipped lists entries dropped because of per-entry I/O errors.
	Skipped []string
}

// Collect walks the tree under root and buckets files by size. Per-entry
// failures (permission denied, entries vanishing mid-walk) skip that
// entry and continue; only an inaccessible root fails the walk.
func Collect(root string, opts Options) (*Result, error) {
	res := &Result{Groups: make(map[int64][]string)}

	exts := normalizeExtensions(opts.FileTypes)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("walker: root inaccessible: %w", err)
			}
			res.Skipped = append(res.Skipped, path)
			return nil
		}

		name := filepath.Base(path)

		if d.IsDir() {
			if path != root {
				if !opts.IncludeHidden && isHidden(name, path) {
					return filepath.SkipDir
				}
				if matchesExclude(name, path, opts.ExcludeFolders) {
					return filepath.SkipDir
				}
			}
			res.Dirs = append(res.Dirs, path)
			if path != root && !opts.ScanSubfolders {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !opts.IncludeHidden && isHidden(name, path) {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			res.Skipped = append(res.Skipped, path)
			return nil
		}
		if info.Size() < opts.MinSize {
			return nil
		}

		res.Groups[info.Size()] = append(res.Groups[info.Size()], path)
		res.Files = append(res.Files, FileEntry{Path: path, Size: info.Size()})
		res.FileCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// ListChildren returns the immediate children of dir that the options
// admit, split into files and subdirectories. Used by the directory
// hashing pass, which needs the same visibility rules as the walk itself.
func ListChildren(dir string, opts Options) (files, dirs []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !opts.IncludeHidden && isHidden(entry.Name(), path) {
			continue
		}
		if entry.IsDir() {
			if matchesExclude(entry.Name(), path, opts.ExcludeFolders) {
				continue
			}
			dirs = append(dirs, path)
			continue
		}
		if entry.Type().IsRegular() {
			files = append(files, path)
		}
	}
	return files, dirs, nil
}

// matchesExclude reports whether a directory name or full path matches
// any exclude entry.
func matchesExclude(name, path string, patterns []string) bool {
	lowerName := strings.ToLower(name)
	lowerPath := strings.ToLower(filepath.ToSlash(path))

	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[{") {
			if ok, err := doublestar.Match(p, lowerPath); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(p, lowerName); err == nil && ok {
				return true
			}
			continue
		}
		if strings.Contains(lowerName, p) || strings.Contains(lowerPath, p) {
			return true
		}
	}
	return false
}

// normalizeExtensions lowercases the allow-list and guarantees a leading
// dot so ".JPG", "jpg" and ".jpg" are all equivalent.
func normalizeExtensions(types []string) map[string]bool {
	if len(types) == 0 {
		return nil
	}
	exts := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		exts[t] = true
	}
	return exts
}

// isHidden reports whether an entry is hidden: dot-prefixed on every
// platform, plus the hidden attribute on platforms that have one.
func isHidden(name, path string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return hasHiddenAttribute(path)
}
