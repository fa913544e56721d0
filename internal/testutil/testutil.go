// Package testutil provides test helpers and fixtures for dupesweep
// tests. All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFixture holds paths to test directories and files
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)
}

// NewFixture creates a new test fixture rooted in a temp directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()
	return &TestFixture{
		T:       t,
		RootDir: t.TempDir(),
	}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	oldTime := time.Now().Add(-age)

	if err := os.Chtimes(fullPath, oldTime, oldTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateRandomFile creates a file with random content
func (f *TestFixture) CreateRandomFile(relPath string, size int) string {
	f.T.Helper()
	content := make([]byte, size)
	rand.Read(content)
	return f.CreateFile(relPath, content)
}

// CreateDuplicateSet writes the same content at every given relative
// path and returns the full paths in argument order. The first path is
// the canonical member once discovered.
func (f *TestFixture) CreateDuplicateSet(content []byte, relPaths ...string) []string {
	f.T.Helper()

	paths := make([]string, 0, len(relPaths))
	for _, rel := range relPaths {
		paths = append(paths, f.CreateFile(rel, content))
	}
	return paths
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateTree creates files from a map of relative path to content,
// returning the fixture root for convenience.
func (f *TestFixture) CreateTree(files map[string]string) string {
	f.T.Helper()

	for rel, content := range files {
		f.CreateFile(rel, []byte(content))
	}
	return f.RootDir
}

// MirrorTree copies every file under srcRel to dstRel, producing two
// directories with identical content but independent files.
func (f *TestFixture) MirrorTree(srcRel, dstRel string) string {
	f.T.Helper()

	src := filepath.Join(f.RootDir, srcRel)
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			f.CreateDir(filepath.Join(dstRel, rel))
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f.CreateFile(filepath.Join(dstRel, rel), content)
		return nil
	})
	if err != nil {
		f.T.Fatalf("failed to mirror %s to %s: %v", srcRel, dstRel, err)
	}

	return filepath.Join(f.RootDir, dstRel)
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link, skipping the test if the
// platform does not support them
func (f *TestFixture) CreateSymlink(target, linkRel string) string {
	f.T.Helper()

	fullLinkPath := filepath.Join(f.RootDir, linkRel)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Skipf("symlinks unavailable: %v", err)
	}

	return fullLinkPath
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// AssertExists fails the test if the path does not exist
func (f *TestFixture) AssertExists(path string) {
	f.T.Helper()
	if _, err := os.Stat(path); err != nil {
		f.T.Errorf("expected %s to exist: %v", path, err)
	}
}

// AssertGone fails the test if the path still exists
func (f *TestFixture) AssertGone(path string) {
	f.T.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		f.T.Errorf("expected %s to be gone, stat err = %v", path, err)
	}
}
