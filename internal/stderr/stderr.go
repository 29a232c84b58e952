//go:build !windows

// Package stderr captures output that native audio libraries (ALSA) write
// straight to file descriptor 2, which would otherwise corrupt the TUI.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

const bufferSize = 100

var (
	mu         sync.Mutex
	messages   chan string
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	done       chan struct{}
)

// Start redirects fd 2 into a pipe. Captured lines are delivered on the
// returned channel, which is closed by Stop. On error nothing is redirected
// and the program can continue without capture.
func Start() (<-chan string, error) {
	mu.Lock()
	defer mu.Unlock()
	if messages != nil {
		return messages, nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	origStderr = orig
	pipeRead = r
	pipeWrite = w
	messages = make(chan string, bufferSize)
	done = make(chan struct{})

	go pump(r, messages, done)
	return messages, nil
}

func pump(r *os.File, out chan<- string, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case out <- line:
		default:
			// Channel full, drop message to avoid blocking
		}
	}
}

// WriteOriginal writes to the real stderr, bypassing capture.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd < 0 {
		fd = int(os.Stderr.Fd())
	}
	_, _ = unix.Write(fd, []byte(msg))
}

// Stop restores the original stderr and closes the capture channel once
// buffered output has been read.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if messages == nil {
		return
	}

	_ = unix.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = unix.Close(origStderr)
	origStderr = -1

	// fd 2 no longer references the pipe; closing our end gives the reader EOF.
	pipeWrite.Close()
	<-done
	pipeRead.Close()
	messages = nil
}
