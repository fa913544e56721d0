package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dupesweep/dupesweep/internal/index"
	"github.com/dupesweep/dupesweep/internal/testutil"
)

func write(t *testing.T, root, rel string, size int) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ============================================================
// Type matching
// ============================================================

func TestMatchesType(t *testing.T) {
	tests := []struct {
		path     string
		fileType string
		want     bool
	}{
		{"/pics/photo.jpg", "images", true},
		{"/pics/photo.JPG", "images", true},
		{"/pics/clip.mp4", "images", false},
		{"/pics/clip.mp4", "videos", true},
		{"/docs/report.pdf", "documents", true},
		{"/music/song.flac", "audio", true},
		{"/dl/bundle.tar", "archives", true},
		{"/src/main.go", "code", true},
		{"/src/main.go", "all", true},
		{"/src/main.go", "", true},
		{"/src/main.go", "nonsense", true},
		{"/misc/noext", "images", false},
	}

	for _, tt := range tests {
		if got := matchesType(tt.path, tt.fileType); got != tt.want {
			t.Errorf("matchesType(%q, %q) = %v, want %v", tt.path, tt.fileType, got, tt.want)
		}
	}
}

// ============================================================
// Filtering
// ============================================================

func TestApplyFileTypeFilter(t *testing.T) {
	root := t.TempDir()
	a := write(t, root, "a.jpg", 4)
	b := write(t, root, "b.jpg", 4)
	c := write(t, root, "c.txt", 4)

	dup := &index.Duplicates{
		Files: index.Buckets{"h1": {a, b, c}},
		Dirs:  index.Buckets{},
	}

	out := Apply(dup, Options{FileType: "images"})

	if got := out.Files["h1"]; len(got) != 2 {
		t.Errorf("Files[h1] = %v, want the two jpg paths", got)
	}
}

func TestApplyDropsGroupsBelowTwoSurvivors(t *testing.T) {
	root := t.TempDir()
	a := write(t, root, "a.jpg", 4)
	b := write(t, root, "b.txt", 4)

	dup := &index.Duplicates{
		Files: index.Buckets{"h1": {a, b}},
		Dirs:  index.Buckets{},
	}

	out := Apply(dup, Options{FileType: "images"})

	if len(out.Files) != 0 {
		t.Errorf("Files = %v, want no surviving groups", out.Files)
	}
}

func TestApplyMinSize(t *testing.T) {
	root := t.TempDir()
	small1 := write(t, root, "s1.bin", 10)
	small2 := write(t, root, "s2.bin", 10)
	big1 := write(t, root, "b1.bin", 100)
	big2 := write(t, root, "b2.bin", 100)

	dup := &index.Duplicates{
		Files: index.Buckets{
			"small": {small1, small2},
			"big":   {big1, big2},
		},
		Dirs: index.Buckets{},
	}

	out := Apply(dup, Options{MinSize: 50})

	if _, ok := out.Files["small"]; ok {
		t.Error("small group survived a 50-byte minimum")
	}
	if got := out.Files["big"]; len(got) != 2 {
		t.Errorf("Files[big] = %v, want both big files", got)
	}
}

func TestApplyQuery(t *testing.T) {
	root := t.TempDir()
	a := write(t, root, "Photos/a.bin", 4)
	b := write(t, root, "photos-backup/a.bin", 4)
	c := write(t, root, "misc/a.bin", 4)

	dup := &index.Duplicates{
		Files: index.Buckets{"h1": {a, b, c}},
		Dirs:  index.Buckets{},
	}

	out := Apply(dup, Options{Query: "photos"})

	if got := out.Files["h1"]; len(got) != 2 {
		t.Errorf("Files[h1] = %v, want the two photo paths", got)
	}
}

func TestApplyTypeFilterIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	d1 := filepath.Join(root, "one")
	d2 := filepath.Join(root, "two")
	for _, d := range []string{d1, d2} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	dup := &index.Duplicates{
		Files: index.Buckets{},
		Dirs:  index.Buckets{"h1": {d1, d2}},
	}

	out := Apply(dup, Options{FileType: "images"})

	if got := out.Dirs["h1"]; len(got) != 2 {
		t.Errorf("Dirs[h1] = %v, want both directories", got)
	}
}

// ============================================================
// Path ordering
// ============================================================

func TestSortPathsBySize(t *testing.T) {
	root := t.TempDir()
	small := write(t, root, "small.bin", 10)
	big := write(t, root, "big.bin", 100)
	mid := write(t, root, "mid.bin", 50)

	paths := []string{small, big, mid}
	SortPaths(paths, SortBySize, false)

	want := []string{big, mid, small}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

func TestSortPathsByName(t *testing.T) {
	paths := []string{"/x/Charlie.txt", "/y/alpha.txt", "/z/Bravo.txt"}
	SortPaths(paths, SortByName, false)

	want := []string{"/y/alpha.txt", "/z/Bravo.txt", "/x/Charlie.txt"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

func TestSortPathsByDate(t *testing.T) {
	f := testutil.NewFixture(t)
	old := f.CreateFileWithAge("old.bin", []byte("x"), 24*time.Hour)
	recent := f.CreateFile("recent.bin", []byte("x"))

	paths := []string{old, recent}
	SortPaths(paths, SortByDate, false)

	if paths[0] != recent {
		t.Errorf("paths = %v, want newest first", paths)
	}
}

func TestSortPathsReverse(t *testing.T) {
	paths := []string{"/a", "/c", "/b"}
	SortPaths(paths, SortByPath, true)

	want := []string{"/c", "/b", "/a"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

func TestSortPathsUnknownCriterionKeepsOrder(t *testing.T) {
	paths := []string{"/c", "/a", "/b"}
	SortPaths(paths, "", false)

	want := []string{"/c", "/a", "/b"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths = %v, want %v", paths, want)
		}
	}
}

// ============================================================
// Group ordering and sizing
// ============================================================

func TestSortGroupsBySize(t *testing.T) {
	root := t.TempDir()
	b1 := write(t, root, "b1.bin", 100)
	b2 := write(t, root, "b2.bin", 100)
	s1 := write(t, root, "s1.bin", 10)
	s2 := write(t, root, "s2.bin", 10)

	buckets := index.Buckets{
		"small": {s1, s2},
		"big":   {b1, b2},
	}

	groups := SortGroups(buckets, GroupsBySize)

	if len(groups) != 2 || groups[0].Hash != "big" {
		t.Errorf("groups = %v, want big group first", groups)
	}
}

func TestSortGroupsByCount(t *testing.T) {
	buckets := index.Buckets{
		"pair":   {"/a", "/b"},
		"triple": {"/c", "/d", "/e"},
	}

	groups := SortGroups(buckets, GroupsByCount)

	if groups[0].Hash != "triple" {
		t.Errorf("groups = %v, want triple first", groups)
	}
}

func TestSortGroupsDefaultByHash(t *testing.T) {
	buckets := index.Buckets{
		"zz": {"/a", "/b"},
		"aa": {"/c", "/d"},
	}

	groups := SortGroups(buckets, "")

	if groups[0].Hash != "aa" || groups[1].Hash != "zz" {
		t.Errorf("groups = %v, want hash order", groups)
	}
}

func TestRecoverableSize(t *testing.T) {
	root := t.TempDir()
	a := write(t, root, "a.bin", 100)
	b := write(t, root, "b.bin", 100)
	c := write(t, root, "c.bin", 100)

	g := Group{Hash: "h", Paths: []string{a, b, c}}

	if got := g.TotalSize(); got != 300 {
		t.Errorf("TotalSize = %d, want 300", got)
	}
	// The canonical first member is kept, so two copies are recoverable.
	if got := g.RecoverableSize(); got != 200 {
		t.Errorf("RecoverableSize = %d, want 200", got)
	}
	if got := RecoverableSpace([]Group{g}); got != 200 {
		t.Errorf("RecoverableSpace = %d, want 200", got)
	}
}

// ============================================================
// Path sizing
// ============================================================

func TestPathSizeDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, root, "tree/a.bin", 30)
	write(t, root, "tree/sub/b.bin", 70)

	if got := PathSize(filepath.Join(root, "tree")); got != 100 {
		t.Errorf("PathSize(dir) = %d, want 100", got)
	}
}

func TestPathSizeMissing(t *testing.T) {
	if got := PathSize(filepath.Join(t.TempDir(), "gone.bin")); got != 0 {
		t.Errorf("PathSize(missing) = %d, want 0", got)
	}
}
