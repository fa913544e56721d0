// Package engine orchestrates duplicate scans: size bucketing, two-stage
// content hashing, directory fingerprint aggregation, and persistence of
// the resulting index.
package engine

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/dupesweep/dupesweep/internal/index"
	"github.com/dupesweep/dupesweep/internal/progress"
	"github.com/dupesweep/dupesweep/internal/walker"
)

const (
	// sizeThreshold splits the hashing strategy: files at or under it go
	// straight to a full hash, larger files are quick-hashed first.
	sizeThreshold = 1 << 20 // 1 MiB

	// maxSkippedItems bounds the diagnostic list of skipped paths.
	maxSkippedItems = 100
)

// Options controls a single scan invocation.
type Options struct {
	walker.Options

	// IncludeDirs enables directory duplicate detection. Off by default:
	// it forces full hashing of the whole tree.
	IncludeDirs bool

	// FlushEvery persists the index after this many hashed items, for
	// crash resilience on long scans. Zero flushes only at the end.
	FlushEvery int
}

// Stats accumulates counters over a run, exposed to the caller afterward.
type Stats struct {
	FilesHashed int
	DirsHashed  int
	Errors      int
	Skipped     []string // bounded to maxSkippedItems entries
}

// Engine runs scans against a single persisted index. One engine owns one
// store; the scanning goroutine is the only writer, while progress
// listeners read snapshots concurrently.
type Engine struct {
	store    *index.Store
	reporter *progress.Reporter

	mu         sync.Mutex
	idx        *index.Index
	stats      Stats
	bytes      int64
	start      time.Time
	sinceFlush int
}

// New creates an engine over the given store, loading the persisted
// index into memory.
func New(store *index.Store) (*Engine, error) {
	idx, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:    store,
		idx:      idx,
		reporter: progress.NewReporter(),
	}, nil
}

// Reporter returns the engine's progress reporter.
func (e *Engine) Reporter() *progress.Reporter { return e.reporter }

// SetReporter replaces the progress reporter.
func (e *Engine) SetReporter(r *progress.Reporter) { e.reporter = r }

// Stats returns a copy of the counters from the most recent run.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.stats
	s.Skipped = append([]string{}, e.stats.Skipped...)
	return s
}

// DetectDuplicates returns all buckets with two or more members.
func (e *Engine) DetectDuplicates() *index.Duplicates {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idx.DetectDuplicates()
}

// RemovePath drops a deleted path from the index. Callers must invoke
// this after deleting a file or directory, before the next
// DetectDuplicates call.
func (e *Engine) RemovePath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.idx.RemovePath(path)
}

// Flush persists the in-memory index. A failed flush is surfaced: the
// caller must know if durability was not achieved.
func (e *Engine) Flush() error {
	e.mu.Lock()
	snapshot := e.idx.Clone()
	e.mu.Unlock()

	return e.store.Save(snapshot)
}

// Clear empties the in-memory index and the persisted store.
func (e *Engine) Clear() error {
	e.mu.Lock()
	e.idx = index.New()
	e.mu.Unlock()

	return e.store.Clear()
}

// CountItems walks the tree counting files and directories, for progress
// bar sizing. Per-path errors are swallowed; the counts are best-effort
// and may be partial.
func (e *Engine) CountItems(root string) (files, dirs int) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs++
		} else if d.Type().IsRegular() {
			files++
		}
		return nil
	})
	return files, dirs
}

// resetRun clears per-run state before a scan.
func (e *Engine) resetRun() {
	e.mu.Lock()
	e.stats = Stats{}
	e.bytes = 0
	e.sinceFlush = 0
	e.start = time.Now()
	e.mu.Unlock()
}

// recordSkip notes a path that could not be processed.
func (e *Engine) recordSkip(path string) {
	e.mu.Lock()
	e.stats.Errors++
	if len(e.stats.Skipped) < maxSkippedItems {
		e.stats.Skipped = append(e.stats.Skipped, path)
	}
	e.mu.Unlock()
}

// insertFile records a file hash and handles checkpoint flushing.
func (e *Engine) insertFile(hash, path string, size int64, flushEvery int) error {
	e.mu.Lock()
	e.idx.Files.Insert(hash, path)
	e.stats.FilesHashed++
	e.bytes += size
	e.sinceFlush++
	flush := flushEvery > 0 && e.sinceFlush >= flushEvery
	if flush {
		e.sinceFlush = 0
	}
	e.mu.Unlock()

	if flush {
		return e.Flush()
	}
	return nil
}

// insertDir records a directory hash and handles checkpoint flushing.
func (e *Engine) insertDir(hash, path string, flushEvery int) error {
	e.mu.Lock()
	e.idx.Dirs.Insert(hash, path)
	e.stats.DirsHashed++
	e.sinceFlush++
	flush := flushEvery > 0 && e.sinceFlush >= flushEvery
	if flush {
		e.sinceFlush = 0
	}
	e.mu.Unlock()

	if flush {
		return e.Flush()
	}
	return nil
}

// publish emits a progress update built from the current counters.
func (e *Engine) publish(phase progress.Phase, currentPath string) {
	e.mu.Lock()
	u := progress.Update{
		Phase:       phase,
		CurrentPath: currentPath,
		FilesHashed: e.stats.FilesHashed,
		DirsHashed:  e.stats.DirsHashed,
		BytesHashed: e.bytes,
		Errors:      e.stats.Errors,
		StartTime:   e.start,
	}
	e.mu.Unlock()

	e.reporter.Publish(u)
}
