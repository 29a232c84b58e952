package player

import (
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// TrackInfo is the tag metadata of a source.
type TrackInfo struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Year   int
	Track  int
}

// DisplayName returns "Artist - Title", or just the title when the artist
// is unknown.
func (i TrackInfo) DisplayName() string {
	if i.Artist == "" {
		return i.Title
	}
	return i.Artist + " - " + i.Title
}

// ReadTrackInfo reads the tags of path. Files without readable tags get the
// base name as title and no error, since playback does not need tags.
func ReadTrackInfo(path string) (TrackInfo, error) {
	info := TrackInfo{Path: path, Title: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info, nil
	}

	if m.Title() != "" {
		info.Title = m.Title()
	}
	info.Artist = m.Artist()
	if info.Artist == "" {
		info.Artist = m.AlbumArtist()
	}
	info.Album = m.Album()
	info.Year = m.Year()
	info.Track, _ = m.Track()
	return info, nil
}
