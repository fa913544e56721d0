package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dupesweep/dupesweep/internal/hasher"
	"github.com/dupesweep/dupesweep/internal/progress"
	"github.com/dupesweep/dupesweep/internal/walker"
)

// ScanOptimized scans the tree under root and records content hashes in
// the index, reading file content only where a duplicate is possible:
// files with a unique size are never opened, and large files whose quick
// hash is unique within their size group are never fully hashed.
//
// Cancelling the context stops the scan promptly between files (and
// between chunks inside a hash); whatever was accumulated is flushed and
// the method returns nil. Partial results are valid.
func (e *Engine) ScanOptimized(ctx context.Context, root string, opts Options) error {
	e.resetRun()
	e.publish(progress.PhaseCollecting, root)

	res, err := walker.Collect(root, opts.Options)
	if err != nil {
		return err
	}
	for _, path := range res.Skipped {
		e.recordSkip(path)
	}

	small, large := partitionBySize(res)

	// Small colliding files go straight to a full hash.
	if done, err := e.fullHashAll(ctx, small, progress.PhaseHashing, opts.FlushEvery); err != nil || done {
		return err
	}

	// Large files are quick-hashed first; a unique prefix digest within a
	// same-size group proves the file unique without reading it all.
	confirmed, cancelled := e.quickHashPass(ctx, large)
	if cancelled {
		return e.finishCancelled()
	}
	if done, err := e.fullHashAll(ctx, confirmed, progress.PhaseFullHashing, opts.FlushEvery); err != nil || done {
		return err
	}

	if opts.IncludeDirs {
		cancelled, err := e.hashDirectories(ctx, res.Dirs, opts)
		if err != nil {
			return err
		}
		if cancelled {
			return e.finishCancelled()
		}
	}

	e.publish(progress.PhaseFlushing, "")
	if err := e.Flush(); err != nil {
		return err
	}

	e.publish(progress.PhaseDone, "")
	return nil
}

// partitionBySize drops size buckets with a single file (provably unique,
// never hashed) and splits the rest at the quick-hash threshold. Files
// keep their discovery order: the first path hashed into a bucket is the
// first one the walk found, which is the canonical-member contract.
func partitionBySize(res *walker.Result) (small, large []string) {
	for _, f := range res.Files {
		if len(res.Groups[f.Size]) < 2 {
			continue
		}
		if f.Size <= sizeThreshold {
			small = append(small, f.Path)
		} else {
			large = append(large, f.Path)
		}
	}
	return small, large
}

// quickHashPass groups the given paths by quick hash and returns only the
// members of groups with two or more files, which need full confirmation.
// The returned paths stay in input (discovery) order.
func (e *Engine) quickHashPass(ctx context.Context, paths []string) (confirmed []string, cancelled bool) {
	quick := make(map[string]string, len(paths))
	counts := make(map[string]int, len(paths))

	for _, path := range paths {
		if ctx.Err() != nil {
			return nil, true
		}
		e.publish(progress.PhaseQuickHashing, path)
		qh := hasher.QuickHash(path)
		quick[path] = qh
		counts[qh]++
	}

	for _, path := range paths {
		if counts[quick[path]] >= 2 {
			confirmed = append(confirmed, path)
		}
	}
	return confirmed, false
}

// fullHashAll fully hashes every path and inserts the results. Returns
// done=true when the scan was cancelled and already finished cleanly.
func (e *Engine) fullHashAll(ctx context.Context, paths []string, phase progress.Phase, flushEvery int) (done bool, err error) {
	for _, path := range paths {
		e.publish(phase, path)

		hash, err := hasher.FullHash(ctx, path)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true, e.finishCancelled()
		}
		if err != nil {
			e.recordSkip(path)
			continue
		}

		size := int64(0)
		if info, statErr := os.Stat(path); statErr == nil {
			size = info.Size()
		}
		if err := e.insertFile(hash, path, size, flushEvery); err != nil {
			return true, err
		}
	}
	return false, nil
}

// hashDirectories computes directory hashes bottom-up: deepest first, so
// every subdirectory's hash exists before its parent aggregates it. File
// hashes missing from the optimized pass are computed on demand and
// cached for the duration of the pass. Index insertion is deferred until
// every hash is computed and happens in discovery order, keeping the
// canonical-member contract independent of the depth ordering.
func (e *Engine) hashDirectories(ctx context.Context, dirs []string, opts Options) (cancelled bool, err error) {
	ordered := append([]string{}, dirs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return pathDepth(ordered[i]) > pathDepth(ordered[j])
	})

	fileHashes := make(map[string]string)
	dirHashes := make(map[string]string)

	for _, dir := range ordered {
		if ctx.Err() != nil {
			return true, nil
		}
		e.publish(progress.PhaseDirHashing, dir)

		files, subdirs, err := walker.ListChildren(dir, opts.Options)
		if err != nil {
			e.recordSkip(dir)
			continue
		}

		var children []string
		for _, f := range files {
			h, ok := fileHashes[f]
			if !ok {
				var hashErr error
				h, hashErr = hasher.FullHash(ctx, f)
				if errors.Is(hashErr, context.Canceled) || errors.Is(hashErr, context.DeadlineExceeded) {
					return true, nil
				}
				if hashErr != nil {
					e.recordSkip(f)
					continue
				}
				fileHashes[f] = h
			}
			children = append(children, h)
		}
		for _, d := range subdirs {
			// A subdirectory without a hash was skipped; omit it from
			// the parent aggregate rather than failing the parent.
			if h, ok := dirHashes[d]; ok {
				children = append(children, h)
			}
		}

		dirHashes[dir] = hasher.HashOfHashes(children)
	}

	for _, dir := range dirs {
		dh, ok := dirHashes[dir]
		if !ok {
			continue
		}
		if err := e.insertDir(dh, dir, opts.FlushEvery); err != nil {
			return false, err
		}
	}
	return false, nil
}

// finishCancelled flushes partial results and reports clean termination.
// Cancellation is not an error: the index is valid and usable.
func (e *Engine) finishCancelled() error {
	if err := e.Flush(); err != nil {
		return err
	}
	e.publish(progress.PhaseCancelled, "")
	return nil
}

// pathDepth counts path separators, ordering directories deepest-first.
func pathDepth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
