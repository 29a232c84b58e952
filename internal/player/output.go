package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is where decoded audio goes. Streamers added with Play are pulled
// from an audio goroutine while the output lock is held.
type Output interface {
	// Init prepares the output for sr and returns the rate it actually runs
	// at. Only the first call opens the device.
	Init(sr beep.SampleRate) (beep.SampleRate, error)
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// Speaker plays through the system audio device. There is only one device,
// so every Player shares it.
var Speaker Output = &speakerOutput{}

type speakerOutput struct {
	mu   sync.Mutex
	rate beep.SampleRate
}

func (o *speakerOutput) Init(sr beep.SampleRate) (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rate != 0 {
		return o.rate, nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return 0, err
	}
	o.rate = sr
	return sr, nil
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

func (o *speakerOutput) Lock() { speaker.Lock() }

func (o *speakerOutput) Unlock() { speaker.Unlock() }
