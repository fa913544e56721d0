// Package filter applies post-detection filtering and ordering to
// duplicate results: file type and size thresholds, path text search,
// and deterministic path and group ordering.
package filter

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dupesweep/dupesweep/internal/index"
)

// Sort criteria for paths within a group.
const (
	SortBySize = "size"
	SortByName = "name"
	SortByDate = "date"
	SortByPath = "path"
)

// Sort criteria for whole groups.
const (
	GroupsBySize  = "group_size"
	GroupsByCount = "count"
	GroupsByHash  = "hash"
)

// Options selects which duplicates survive and how they are ordered.
// The zero value keeps everything in discovery order.
type Options struct {
	// FileType keeps only paths in the named extension category
	// ("images", "videos", "documents", "audio", "archives", "code").
	// "all" or empty keeps every path. Applies to file groups only.
	FileType string

	// MinSize drops paths smaller than this many bytes. Directories are
	// measured by their recursive content size.
	MinSize int64

	// Query keeps only paths containing this text, case-insensitively.
	Query string

	// SortBy orders paths within each group: "size" and "date" largest
	// and newest first, "name" and "path" ascending. Empty keeps
	// discovery order.
	SortBy string

	// Reverse inverts the sort order.
	Reverse bool
}

// Apply filters the duplicate buckets in place of a copy: groups whose
// survivors drop below two members disappear, the rest have their paths
// ordered per opts. The input is not mutated.
func Apply(dup *index.Duplicates, opts Options) *index.Duplicates {
	return &index.Duplicates{
		Files: filterBuckets(dup.Files, opts, true),
		Dirs:  filterBuckets(dup.Dirs, opts, false),
	}
}

func filterBuckets(buckets index.Buckets, opts Options, typed bool) index.Buckets {
	out := make(index.Buckets, len(buckets))

	for hash, paths := range buckets {
		kept := make([]string, 0, len(paths))
		for _, p := range paths {
			if typed && !matchesType(p, opts.FileType) {
				continue
			}
			if opts.MinSize > 0 && PathSize(p) < opts.MinSize {
				continue
			}
			if !matchesQuery(p, opts.Query) {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) < 2 {
			continue
		}
		SortPaths(kept, opts.SortBy, opts.Reverse)
		out[hash] = kept
	}

	return out
}

func matchesQuery(path, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(path), strings.ToLower(query))
}

// SortPaths orders paths in place by the given criterion. Size and date
// sort descending by default so the largest or newest comes first; name
// and path sort ascending. An unknown criterion leaves the order as is.
func SortPaths(paths []string, sortBy string, reverse bool) {
	var less func(a, b string) bool

	switch sortBy {
	case SortBySize:
		sizes := make(map[string]int64, len(paths))
		for _, p := range paths {
			sizes[p] = PathSize(p)
		}
		less = func(a, b string) bool { return sizes[a] > sizes[b] }
	case SortByDate:
		times := make(map[string]int64, len(paths))
		for _, p := range paths {
			times[p] = modTime(p)
		}
		less = func(a, b string) bool { return times[a] > times[b] }
	case SortByName:
		less = func(a, b string) bool {
			return strings.ToLower(filepath.Base(a)) < strings.ToLower(filepath.Base(b))
		}
	case SortByPath:
		less = func(a, b string) bool {
			return strings.ToLower(a) < strings.ToLower(b)
		}
	default:
		return
	}

	sort.SliceStable(paths, func(i, j int) bool {
		if reverse {
			return less(paths[j], paths[i])
		}
		return less(paths[i], paths[j])
	})
}

// Group is one duplicate bucket with a stable position in a listing.
type Group struct {
	Hash  string
	Paths []string
}

// TotalSize returns the combined on-disk size of all group members.
func (g Group) TotalSize() int64 {
	var total int64
	for _, p := range g.Paths {
		total += PathSize(p)
	}
	return total
}

// RecoverableSize returns the bytes freed by deleting every member
// except the canonical first one.
func (g Group) RecoverableSize() int64 {
	var total int64
	for _, p := range g.Paths[1:] {
		total += PathSize(p)
	}
	return total
}

// SortGroups flattens buckets into an ordered slice: "group_size" puts
// the groups wasting the most bytes first, "count" the groups with the
// most members. Any other criterion orders by hash, which is stable
// across runs.
func SortGroups(buckets index.Buckets, sortBy string) []Group {
	groups := make([]Group, 0, len(buckets))
	for hash, paths := range buckets {
		groups = append(groups, Group{Hash: hash, Paths: append([]string{}, paths...)})
	}

	switch sortBy {
	case GroupsBySize:
		sizes := make(map[string]int64, len(groups))
		for _, g := range groups {
			sizes[g.Hash] = g.TotalSize()
		}
		sort.Slice(groups, func(i, j int) bool {
			if sizes[groups[i].Hash] != sizes[groups[j].Hash] {
				return sizes[groups[i].Hash] > sizes[groups[j].Hash]
			}
			return groups[i].Hash < groups[j].Hash
		})
	case GroupsByCount:
		sort.Slice(groups, func(i, j int) bool {
			if len(groups[i].Paths) != len(groups[j].Paths) {
				return len(groups[i].Paths) > len(groups[j].Paths)
			}
			return groups[i].Hash < groups[j].Hash
		})
	default:
		sort.Slice(groups, func(i, j int) bool {
			return groups[i].Hash < groups[j].Hash
		})
	}

	return groups
}

// RecoverableSpace sums the recoverable bytes across all groups.
func RecoverableSpace(groups []Group) int64 {
	var total int64
	for _, g := range groups {
		total += g.RecoverableSize()
	}
	return total
}

// PathSize returns the size of a file, or the recursive content size of
// a directory. Paths that cannot be measured report zero rather than an
// error; a vanished file simply stops counting toward totals.
func PathSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	var total int64
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if fi, err := d.Info(); err == nil {
				total += fi.Size()
			}
		}
		return nil
	})
	return total
}

func modTime(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}
