package filter

import (
	"path/filepath"
	"strings"
)

// Extension categories for the file type filter. Keys are lowercase
// extensions including the leading dot.
var (
	imageExts = extSet(".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp",
		".ico", ".tiff", ".tif", ".raw", ".heic", ".heif", ".psd", ".ai")

	videoExts = extSet(".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm",
		".m4v", ".mpg", ".mpeg", ".3gp", ".f4v", ".swf", ".vob", ".ogv")

	documentExts = extSet(".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt",
		".xls", ".xlsx", ".ppt", ".pptx", ".csv", ".ods", ".odp", ".tex",
		".md", ".epub")

	audioExts = extSet(".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma",
		".m4a", ".opus", ".ape", ".alac", ".aiff")

	archiveExts = extSet(".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz",
		".iso", ".dmg", ".pkg", ".deb", ".rpm")

	codeExts = extSet(".py", ".js", ".java", ".c", ".cpp", ".h", ".hpp",
		".cs", ".go", ".rs", ".rb", ".php", ".swift", ".kt", ".ts", ".tsx",
		".jsx", ".html", ".css", ".scss", ".sass", ".less", ".sql", ".sh",
		".bat", ".ps1")

	typeCategories = map[string]map[string]bool{
		"images":    imageExts,
		"videos":    videoExts,
		"documents": documentExts,
		"audio":     audioExts,
		"archives":  archiveExts,
		"code":      codeExts,
	}
)

func extSet(exts ...string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}

// TypeCategories returns the recognized file type category names.
func TypeCategories() []string {
	return []string{"all", "images", "videos", "documents", "audio", "archives", "code"}
}

// matchesType reports whether path belongs to the named category. The
// category "all", the empty string, and unknown category names match
// everything.
func matchesType(path, fileType string) bool {
	switch fileType {
	case "", "all":
		return true
	}
	exts, ok := typeCategories[strings.ToLower(fileType)]
	if !ok {
		return true
	}
	return exts[strings.ToLower(filepath.Ext(path))]
}
