package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/dupesweep/dupesweep/internal/hasher"
	"github.com/dupesweep/dupesweep/internal/progress"
)

// dirFrame is one directory on the explicit traversal stack. The stack
// replaces recursion so tree depth never hits a call-stack limit.
type dirFrame struct {
	path    string
	files   []string
	subdirs []string
	listed  bool
}

// RecursiveHash hashes every file and directory under path bottom-up,
// with no size pre-filtering, and records all hashes in the index. It
// returns the content hash of path itself. Entries that vanish or fail
// mid-walk are recorded as skipped and omitted from their parent's
// aggregate. Cancellation flushes partial results and returns cleanly
// with an empty hash.
func (e *Engine) RecursiveHash(ctx context.Context, path string, flushEvery int) (string, error) {
	e.resetRun()

	hash, cancelled, err := e.recursiveHash(ctx, path, flushEvery)
	if err != nil {
		return "", err
	}
	if cancelled {
		return "", e.finishCancelled()
	}

	e.publish(progress.PhaseFlushing, "")
	if err := e.Flush(); err != nil {
		return "", err
	}
	e.publish(progress.PhaseDone, "")
	return hash, nil
}

func (e *Engine) recursiveHash(ctx context.Context, root string, flushEvery int) (hash string, cancelled bool, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", false, err
	}

	if !info.IsDir() {
		hash, cancelled, err = e.hashOneFile(ctx, root, flushEvery)
		return hash, cancelled, err
	}

	dirHashes := make(map[string]string)
	stack := []dirFrame{{path: root}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return "", true, nil
		}

		i := len(stack) - 1

		if !stack[i].listed {
			stack[i].listed = true
			entries, err := os.ReadDir(stack[i].path)
			if err != nil {
				// Vanished or unreadable: skip it, parents will omit it.
				e.recordSkip(stack[i].path)
				stack = stack[:i]
				continue
			}
			for _, entry := range entries {
				child := filepath.Join(stack[i].path, entry.Name())
				if entry.IsDir() {
					stack[i].subdirs = append(stack[i].subdirs, child)
				} else if entry.Type().IsRegular() {
					stack[i].files = append(stack[i].files, child)
				}
			}
			// Push subdirectories after this frame is fully built; they
			// are processed first and this frame resumes afterward.
			for _, d := range stack[i].subdirs {
				stack = append(stack, dirFrame{path: d})
			}
			continue
		}

		frame := stack[i]
		stack = stack[:i]

		var children []string
		for _, f := range frame.files {
			h, cancelled, err := e.hashOneFile(ctx, f, flushEvery)
			if err != nil || cancelled {
				return "", cancelled, err
			}
			if h != "" {
				children = append(children, h)
			}
		}
		for _, d := range frame.subdirs {
			if h, ok := dirHashes[d]; ok {
				children = append(children, h)
			}
		}

		e.publish(progress.PhaseDirHashing, frame.path)
		dh := hasher.HashOfHashes(children)
		dirHashes[frame.path] = dh
		if err := e.insertDir(dh, frame.path, flushEvery); err != nil {
			return "", false, err
		}
	}

	return dirHashes[root], false, nil
}

// hashOneFile fully hashes a single file and inserts it. A hash failure
// is recorded and reported as an empty hash, not an error, so the walk
// continues.
func (e *Engine) hashOneFile(ctx context.Context, path string, flushEvery int) (hash string, cancelled bool, err error) {
	e.publish(progress.PhaseHashing, path)

	h, err := hasher.FullHash(ctx, path)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", true, nil
	}
	if err != nil {
		e.recordSkip(path)
		return "", false, nil
	}

	size := int64(0)
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	if err := e.insertFile(h, path, size, flushEvery); err != nil {
		return "", false, err
	}
	return h, false, nil
}
