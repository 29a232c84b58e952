//go:build linux

package mpris

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists album art file names in priority order. Matching
// ignores case.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt returns the best album art file next to src, or "".
func FindAlbumArt(src string) string {
	dir := filepath.Dir(src)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	found := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			found[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, name := range coverNames {
		if real, ok := found[name]; ok {
			return filepath.Join(dir, real)
		}
	}
	return ""
}
