package player

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// track sits directly on the decoder. At the end of the source it rewinds
// when looping, otherwise it marks itself ended and plays silence until
// rewound. It never reports exhaustion, so the chain above it stays valid
// for the lifetime of the handle.
//
// Every field is accessed under the output lock.
type track struct {
	source beep.StreamSeekCloser
	loop   *atomic.Bool
	ended  bool

	// onEnd runs on the audio goroutine and must not block.
	onEnd func(looped bool)
}

func (t *track) Stream(samples [][2]float64) (n int, ok bool) {
	// rewound stops a source that yields nothing after a rewind from
	// spinning the audio goroutine.
	rewound := false
	for n < len(samples) && !t.ended {
		m, more := t.source.Stream(samples[n:])
		n += m
		if more && m > 0 {
			rewound = false
			continue
		}
		if !rewound && t.loop.Load() && t.source.Seek(0) == nil {
			rewound = true
			t.onEnd(true)
			continue
		}
		t.ended = true
		t.onEnd(false)
	}
	clear(samples[n:])
	return len(samples), true
}

func (t *track) Err() error { return t.source.Err() }

// rewind moves back to the start and clears the ended mark.
func (t *track) rewind() error {
	t.ended = false
	return t.source.Seek(0)
}
