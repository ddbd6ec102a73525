package safety

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SiblingPath returns the path of a file called name in the same directory as
// original. name must be a bare file name: separators and dot entries are rejected
// so a crafted directory entry can never redirect a copy outside that directory.
func SiblingPath(original, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is empty")
	}
	if name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("file name must not contain path separators: %q", name)
	}
	return filepath.Join(filepath.Dir(original), name), nil
}
