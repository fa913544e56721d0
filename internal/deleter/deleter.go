// Package deleter removes duplicate files and directories with
// safeguards: unsafe paths are refused, transient failures are retried,
// and every successful removal is reflected back into the index.
package deleter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dupesweep/dupesweep/internal/filter"
)

// Index receives removal notifications so detection results stay in
// sync with the filesystem.
type Index interface {
	RemovePath(path string)
}

// Result represents the outcome of a delete operation
type Result struct {
	DeletedPaths  []string
	DeletedSize   int64
	SkippedPaths  []string
	SkippedReason map[string]string
	Errors        []*DeletionError
	DryRun        bool
}

// Deleter handles duplicate deletion with safeguards
type Deleter struct {
	index  Index
	dryRun bool
}

// New creates a new Deleter bound to an index
func New(index Index, dryRun bool) *Deleter {
	return &Deleter{index: index, dryRun: dryRun}
}

// Delete removes the given paths. Directories are removed recursively.
// Each successful removal is reported to the index before the next path
// is attempted, so a partial run leaves the index consistent.
func (d *Deleter) Delete(paths []string) *Result {
	result := &Result{
		SkippedReason: make(map[string]string),
		DryRun:        d.dryRun,
	}

	for _, path := range paths {
		size := filter.PathSize(path)

		if d.dryRun {
			result.DeletedPaths = append(result.DeletedPaths, path)
			result.DeletedSize += size
			continue
		}

		if err := d.deleteWithRetry(path); err != nil {
			if err.Reason == ErrorFileNotFound {
				// Already gone; still drop it from the index.
				d.index.RemovePath(path)
			}
			result.Errors = append(result.Errors, err)
			result.SkippedPaths = append(result.SkippedPaths, path)
			result.SkippedReason[path] = err.UserMessage()
			continue
		}

		d.index.RemovePath(path)
		result.DeletedPaths = append(result.DeletedPaths, path)
		result.DeletedSize += size
	}

	return result
}

// DeleteDuplicates removes every member of each group except the
// canonical first one.
func (d *Deleter) DeleteDuplicates(groups []filter.Group) *Result {
	var doomed []string
	for _, g := range groups {
		if len(g.Paths) < 2 {
			continue
		}
		doomed = append(doomed, g.Paths[1:]...)
	}
	return d.Delete(doomed)
}

// deleteWithRetry attempts a deletion with retries for transient errors
func (d *Deleter) deleteWithRetry(path string) *DeletionError {
	const maxRetries = 3
	retryDelays := []time.Duration{
		100 * time.Millisecond,
		500 * time.Millisecond,
		2 * time.Second,
	}

	var lastErr *DeletionError

	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = d.deleteOne(path)
		if lastErr == nil {
			return nil
		}
		if !lastErr.Retryable {
			return lastErr
		}
		if attempt < maxRetries-1 {
			time.Sleep(retryDelays[attempt])
		}
	}

	return lastErr
}

// deleteOne removes a single path after safety checks
func (d *Deleter) deleteOne(path string) *DeletionError {
	if err := isSafeToDelete(path); err != nil {
		return &DeletionError{
			Path:     path,
			Reason:   ErrorInvalidPath,
			Original: err,
		}
	}

	// Lstat so a path swapped for a symlink is caught, not followed.
	info, err := os.Lstat(path)
	if err != nil {
		return CategorizeError(path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return &DeletionError{
			Path:     path,
			Reason:   ErrorInvalidPath,
			Original: fmt.Errorf("path is a symlink"),
		}
	}

	var deleteErr error
	if info.IsDir() {
		deleteErr = os.RemoveAll(path)
	} else {
		deleteErr = os.Remove(path)
	}
	if deleteErr != nil {
		return CategorizeError(path, deleteErr)
	}

	return nil
}

// isSafeToDelete rejects paths whose removal could take out far more
// than a duplicate: the filesystem root, a home directory, or anything
// not expressed as an absolute path.
func isSafeToDelete(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		return fmt.Errorf("path is not absolute")
	}
	if clean == string(filepath.Separator) || filepath.Dir(clean) == clean {
		return fmt.Errorf("refusing to delete filesystem root")
	}
	if home, err := os.UserHomeDir(); err == nil && clean == filepath.Clean(home) {
		return fmt.Errorf("refusing to delete home directory")
	}

	return nil
}
