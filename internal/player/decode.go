package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
)

// ErrUnsupportedFormat is returned for sources no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// formatOf returns the lower-case extension used to pick a decoder. An
// explicit format hint wins over the file extension.
func formatOf(src, hint string) string {
	if hint != "" {
		return "." + strings.ToLower(strings.TrimPrefix(hint, "."))
	}
	return strings.ToLower(filepath.Ext(src))
}

// IsSupported reports whether src can be decoded.
func IsSupported(src string) bool {
	switch formatOf(src, "") {
	case extMP3, extFLAC, extWAV:
		return true
	default:
		return false
	}
}

// openSource opens and decodes src. The returned streamer owns the file.
func openSource(src, hint string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := formatOf(src, hint)
	switch ext {
	case extMP3, extFLAC, extWAV:
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case extMP3:
		streamer, format, err = decodeGoMP3(f)
	case extFLAC:
		// Some taggers prepend ID3v2 to FLAC files.
		if err = skipID3v2(f); err == nil {
			streamer, format, err = flac.Decode(f)
		}
	case extWAV:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, &decodeError{err: err}
	}
	return streamer, format, nil
}

// decodeError marks a source that opened but could not be decoded.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// skipID3v2 positions r after an ID3v2 tag, or at the start when there is
// none.
func skipID3v2(r io.ReadSeeker) error {
	var header [10]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if n < len(header) || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(int64(len(header))+size, io.SeekStart)
	return err
}
