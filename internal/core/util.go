// Package core provides utility functions for sharekeeper's collection framework.
package core

import (
	"os"
	"regexp"
	"strings"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-z0-9_-]`)
	repeatedUnders  = regexp.MustCompile(`_+`)
)

// SanitizeName turns a module name such as "windows/fileshares" into a
// directory name ("windows_fileshares").
func SanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	name = repeatedUnders.ReplaceAllString(strings.Trim(name, "_"), "_")
	if name == "" {
		return "unknown"
	}
	return name
}

// CreateTempDir creates a temporary artifacts directory.
func CreateTempDir() (string, error) {
	return os.MkdirTemp("", "sharekeeper_*")
}

// RemoveTempDir removes a temporary directory and its contents. An empty
// path is a no-op.
func RemoveTempDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
