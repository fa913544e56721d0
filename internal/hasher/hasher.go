// Package hasher computes SHA-256 content fingerprints for files and
// directories. Equal hashes are treated as proof of equal content.
package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	// ChunkSize is the read size used by FullHash. 64KB keeps memory flat
	// while amortizing syscall overhead on large files.
	ChunkSize = 64 * 1024

	// QuickHashBytes is the prefix length digested by QuickHash.
	QuickHashBytes = 8192
)

// emptyHash is the SHA-256 digest of the empty byte stream.
var emptyHash = hex.EncodeToString(sha256.New().Sum(nil))

// EmptyHash returns the digest of the empty byte stream. It is the quick
// hash of unreadable files and the directory hash of a directory with no
// hashable children.
func EmptyHash() string {
	return emptyHash
}

// FullHash streams the entire file through SHA-256 in ChunkSize reads and
// returns the hex digest. The context is checked between chunk reads; a
// cancelled context aborts the read and returns context.Canceled (or the
// context's error) with no hash.
func FullHash(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hasher: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, ChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("hasher: read %s: %w", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// QuickHash digests at most the first QuickHashBytes bytes of the file.
// It is a pre-filter only: equal quick hashes must be confirmed by
// FullHash, but a quick hash unique among same-size files proves the file
// unique. Any I/O failure yields the empty-stream digest instead of an
// error so a bad file only loses the optimization, not the scan.
func QuickHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return emptyHash
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyN(h, f, QuickHashBytes); err != nil && err != io.EOF {
		return emptyHash
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HashOfHashes digests the lexicographically sorted concatenation of the
// given hash strings. Sorting makes the result invariant to the order the
// children were listed in. Empty entries (failed child hashes) are
// skipped; an empty input still yields the well-defined empty-stream
// digest.
func HashOfHashes(hashes []string) string {
	sorted := make([]string, 0, len(hashes))
	for _, s := range hashes {
		if s != "" {
			sorted = append(sorted, s)
		}
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, s := range sorted {
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}
