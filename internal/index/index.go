// Package index holds the persisted hash-to-paths mapping for files and
// directories discovered during scans.
package index

// Buckets maps a content hash to the ordered list of paths sharing that
// hash. Path order is insertion order, which equals discovery order: the
// first path in a bucket is the canonical member, conventionally kept
// when duplicates are deleted.
type Buckets map[string][]string

// Insert appends path to the bucket for hash, creating the bucket if it
// does not exist. A path already present in the bucket is not added
// again. Reports whether the path was inserted.
func (b Buckets) Insert(hash, path string) bool {
	for _, p := range b[hash] {
		if p == path {
			return false
		}
	}
	b[hash] = append(b[hash], path)
	return true
}

// Canonical returns the canonical (first-discovered) member of the bucket
// for hash, or "" if the bucket does not exist.
func (b Buckets) Canonical(hash string) string {
	paths := b[hash]
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// removePath removes path from whichever bucket contains it. A bucket
// left with fewer than two members is deleted entirely; it no longer
// represents a duplicate group. Reports whether a removal happened.
func (b Buckets) removePath(path string) bool {
	for hash, paths := range b {
		for i, p := range paths {
			if p != path {
				continue
			}
			remaining := append(append([]string{}, paths[:i]...), paths[i+1:]...)
			if len(remaining) < 2 {
				delete(b, hash)
			} else {
				b[hash] = remaining
			}
			return true
		}
	}
	return false
}

// clone returns a deep copy of the buckets.
func (b Buckets) clone() Buckets {
	out := make(Buckets, len(b))
	for hash, paths := range b {
		out[hash] = append([]string{}, paths...)
	}
	return out
}

// Index is the in-memory duplicate index: one bucket map for files and
// one for directories. A given path appears in at most one bucket per
// mapping.
type Index struct {
	Files Buckets
	Dirs  Buckets
}

// New returns an empty index.
func New() *Index {
	return &Index{
		Files: make(Buckets),
		Dirs:  make(Buckets),
	}
}

// RemovePath removes path from the index after the caller has deleted it
// from disk. The file mapping is searched first, then the directory
// mapping; only the first match is removed. A path present in neither
// mapping is a no-op.
func (ix *Index) RemovePath(path string) {
	if ix.Files.removePath(path) {
		return
	}
	ix.Dirs.removePath(path)
}

// Duplicates holds only the buckets with two or more members.
type Duplicates struct {
	Files Buckets
	Dirs  Buckets
}

// DetectDuplicates returns the buckets from each mapping that hold at
// least two paths. The index is not mutated; returned buckets are copies.
func (ix *Index) DetectDuplicates() *Duplicates {
	dup := &Duplicates{
		Files: make(Buckets),
		Dirs:  make(Buckets),
	}

	for hash, paths := range ix.Files {
		if len(paths) > 1 {
			dup.Files[hash] = append([]string{}, paths...)
		}
	}
	for hash, paths := range ix.Dirs {
		if len(paths) > 1 {
			dup.Dirs[hash] = append([]string{}, paths...)
		}
	}

	return dup
}

// Clone returns a deep copy of the index.
func (ix *Index) Clone() *Index {
	return &Index{
		Files: ix.Files.clone(),
		Dirs:  ix.Dirs.clone(),
	}
}
