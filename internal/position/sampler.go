package position

import (
	"sync"
	"time"
)

// Sampler calls a function periodically between Start and Stop.
type Sampler interface {
	// Start begins calling fn. Starting a running sampler does nothing.
	Start(fn func())
	// Stop cancels sampling. A call of fn already under way may still
	// complete, so fn must tolerate running after Stop.
	Stop()
}

// DefaultInterval is how often IntervalSampler samples.
const DefaultInterval = time.Second

// FrameInterval is the period of FrameSampler, one display frame at 60 Hz.
const FrameInterval = time.Second / 60

// tickerSampler drives fn from a time.Ticker in its own goroutine.
type tickerSampler struct {
	interval time.Duration

	mu      sync.Mutex
	running bool
	gen     uint64
	stop    chan struct{}
}

// IntervalSampler samples every interval, DefaultInterval when zero.
func IntervalSampler(interval time.Duration) Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &tickerSampler{interval: interval}
}

// FrameSampler samples once per display frame.
func FrameSampler() Sampler {
	return &tickerSampler{interval: FrameInterval}
}

func (s *tickerSampler) Start(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.gen++
	s.stop = make(chan struct{})
	go s.loop(s.gen, s.stop, fn)
}

func (s *tickerSampler) loop(gen uint64, stop <-chan struct{}, fn func()) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			// A tick can race Stop; only the live generation samples.
			s.mu.Lock()
			live := s.running && s.gen == gen
			s.mu.Unlock()
			if !live {
				return
			}
			fn()
		}
	}
}

func (s *tickerSampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
}
