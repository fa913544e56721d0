package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestFullHashIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", []byte("hello"))
	b := writeFile(t, dir, "b.txt", []byte("hello"))

	ha, err := FullHash(context.Background(), a)
	if err != nil {
		t.Fatalf("FullHash(a): %v", err)
	}
	hb, err := FullHash(context.Background(), b)
	if err != nil {
		t.Fatalf("FullHash(b): %v", err)
	}

	if ha != hb {
		t.Errorf("identical content produced different hashes: %s vs %s", ha, hb)
	}

	want := sha256.Sum256([]byte("hello"))
	if ha != hex.EncodeToString(want[:]) {
		t.Errorf("FullHash = %s, want sha256 of content", ha)
	}
}

func TestFullHashDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", []byte("hello"))
	b := writeFile(t, dir, "b.txt", []byte("world"))

	ha, _ := FullHash(context.Background(), a)
	hb, _ := FullHash(context.Background(), b)

	if ha == hb {
		t.Error("different content produced the same hash")
	}
}

func TestFullHashLargeFile(t *testing.T) {
	dir := t.TempDir()
	// Span multiple chunks so the read loop is exercised.
	content := make([]byte, 3*ChunkSize+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeFile(t, dir, "large.bin", content)

	got, err := FullHash(context.Background(), path)
	if err != nil {
		t.Fatalf("FullHash: %v", err)
	}

	want := sha256.Sum256(content)
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("FullHash = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestFullHashMissingFile(t *testing.T) {
	_, err := FullHash(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestFullHashCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", []byte("hello"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hash, err := FullHash(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if hash != "" {
		t.Errorf("cancelled hash = %q, want empty", hash)
	}
}

func TestQuickHashPrefixOnly(t *testing.T) {
	dir := t.TempDir()

	// Same first 8KB, different tails: quick hashes must collide.
	prefix := make([]byte, QuickHashBytes)
	for i := range prefix {
		prefix[i] = byte(i)
	}
	a := writeFile(t, dir, "a.bin", append(append([]byte{}, prefix...), 'x'))
	b := writeFile(t, dir, "b.bin", append(append([]byte{}, prefix...), 'y'))

	if QuickHash(a) != QuickHash(b) {
		t.Error("quick hashes differ despite identical prefixes")
	}

	// Different prefixes must not collide.
	c := writeFile(t, dir, "c.bin", []byte("something else entirely"))
	if QuickHash(a) == QuickHash(c) {
		t.Error("quick hashes collide despite different prefixes")
	}
}

func TestQuickHashSmallFileMatchesFull(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "small.txt", []byte("tiny"))

	full, err := FullHash(context.Background(), path)
	if err != nil {
		t.Fatalf("FullHash: %v", err)
	}
	if quick := QuickHash(path); quick != full {
		t.Errorf("quick hash of sub-prefix file = %s, want full hash %s", quick, full)
	}
}

func TestQuickHashMissingFile(t *testing.T) {
	got := QuickHash(filepath.Join(t.TempDir(), "nope"))
	if got != EmptyHash() {
		t.Errorf("QuickHash of missing file = %s, want empty-stream digest", got)
	}
}

func TestHashOfHashesOrderInvariant(t *testing.T) {
	a := "aaaa"
	b := "bbbb"
	c := "cccc"

	h1 := HashOfHashes([]string{a, b, c})
	h2 := HashOfHashes([]string{c, a, b})
	h3 := HashOfHashes([]string{b, c, a})

	if h1 != h2 || h2 != h3 {
		t.Errorf("HashOfHashes not order invariant: %s, %s, %s", h1, h2, h3)
	}
}

func TestHashOfHashesSkipsEmptyEntries(t *testing.T) {
	with := HashOfHashes([]string{"aaaa", "", "bbbb"})
	without := HashOfHashes([]string{"aaaa", "bbbb"})
	if with != without {
		t.Error("empty entries should be omitted from the digest")
	}
}

func TestHashOfHashesEmptyInput(t *testing.T) {
	got := HashOfHashes(nil)
	if got != EmptyHash() {
		t.Errorf("HashOfHashes(nil) = %s, want empty-stream digest", got)
	}
	if got != HashOfHashes([]string{}) {
		t.Error("nil and empty inputs should hash identically")
	}
	if got != HashOfHashes([]string{""}) {
		t.Error("input of only empty entries should equal the empty digest")
	}
}
