// ABOUTME: Silent output device
// ABOUTME: Drains voices without a sound card, for headless runs and tests
package output

import (
	"errors"
	"io"
	"sync"
)

// Discard is a Device that consumes PCM without playing it
type Discard struct {
	mu        sync.Mutex
	opened    bool
	suspended bool
	started   int
}

// NewDiscard creates a silent output
func NewDiscard() *Discard {
	return &Discard{}
}

// Open marks the device ready. Reopening after Close resumes it.
func (d *Discard) Open(sampleRate, channels int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = true
	d.suspended = false
	return nil
}

// Start drains r on a background goroutine
func (d *Discard) Start(r io.Reader) (Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.opened {
		return nil, errors.New("output not initialized")
	}
	d.started++

	v := &discardVoice{done: make(chan struct{})}
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-v.done:
				return
			default:
			}
			if _, err := r.Read(buf); err != nil {
				return
			}
		}
	}()
	return v, nil
}

// Suspend marks the device suspended
func (d *Discard) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = true
	return nil
}

// Resume clears the suspended flag
func (d *Discard) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = false
	return nil
}

// Close suspends the device, keeping it open like the oto context
func (d *Discard) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspended = true
	return nil
}

// Started returns how many voices have been started
func (d *Discard) Started() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Suspended reports whether Suspend was called without a later Resume
func (d *Discard) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}

type discardVoice struct {
	once sync.Once
	done chan struct{}
}

func (v *discardVoice) Close() error {
	v.once.Do(func() { close(v.done) })
	return nil
}
