//go:build !windows

package walker

// hasHiddenAttribute is a no-op on Unix: hidden means a dot prefix.
func hasHiddenAttribute(string) bool { return false }
