package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3Streamer adapts a go-mp3 decoder to beep.StreamSeekCloser. go-mp3
// always produces 16-bit stereo PCM.
type mp3Streamer struct {
	decoder *mp3.Decoder
	closer  io.Closer
	err     error
	buf     []byte
}

const mp3FrameBytes = 4 // two 16-bit channels

func decodeGoMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Streamer{
		decoder: decoder,
		closer:  rc,
		buf:     make([]byte, 8192),
	}, format, nil
}

func (d *mp3Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}

	want := len(samples) * mp3FrameBytes
	if len(d.buf) < want {
		d.buf = make([]byte, want)
	}
	read, err := io.ReadFull(d.decoder, d.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		d.err = err
		return 0, false
	}

	n = read / mp3FrameBytes
	if n == 0 {
		return 0, false
	}
	for i := range n {
		off := i * mp3FrameBytes
		left := int16(binary.LittleEndian.Uint16(d.buf[off:]))    //nolint:gosec // audio samples
		right := int16(binary.LittleEndian.Uint16(d.buf[off+2:])) //nolint:gosec // audio samples
		samples[i][0] = float64(left) / 32768
		samples[i][1] = float64(right) / 32768
	}
	return n, true
}

func (d *mp3Streamer) Err() error { return d.err }

func (d *mp3Streamer) Len() int {
	return max(int(d.decoder.SampleCount()), 0)
}

func (d *mp3Streamer) Position() int {
	return int(d.decoder.SamplePosition())
}

func (d *mp3Streamer) Seek(p int) error {
	p = min(max(p, 0), d.Len())
	if err := d.decoder.SeekToSample(int64(p)); err != nil {
		return err
	}
	d.err = nil
	return nil
}

func (d *mp3Streamer) Close() error { return d.closer.Close() }
