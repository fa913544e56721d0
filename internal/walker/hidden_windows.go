//go:build windows

package walker

import "golang.org/x/sys/windows"

// hasHiddenAttribute checks the Windows hidden file attribute. Attribute
// lookup failures are treated as not hidden; the entry will be handled
// (or skipped) by the regular walk error path.
func hasHiddenAttribute(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
