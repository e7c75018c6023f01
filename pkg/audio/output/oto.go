// ABOUTME: Oto-based audio output implementation
// ABOUTME: Owns the single oto context and starts one player per voice
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Short player buffers keep fade onsets close to the gesture
const playerBuffer = 20 * time.Millisecond

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	logger     *zap.SugaredLogger
}

// NewOto creates a new Oto output
func NewOto(logger *zap.SugaredLogger) *Oto {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Oto{logger: logger}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		// oto only allows one context per process
		if o.sampleRate != sampleRate || o.channels != channels {
			o.logger.Warnw("Format change ignored, keeping existing oto context",
				"current_rate", o.sampleRate, "current_channels", o.channels,
				"requested_rate", sampleRate, "requested_channels", channels)
		}
		// Close only suspends, so reopening has to resume
		if err := o.otoCtx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   playerBuffer,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels

	o.logger.Infow("Audio output initialized", "sample_rate", sampleRate, "channels", channels)
	return nil
}

// Start begins playing r on a new oto player
func (o *Oto) Start(r io.Reader) (Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return nil, errors.New("output not initialized")
	}

	player := o.otoCtx.NewPlayer(r)
	frameBytes := 2 * o.channels
	player.SetBufferSize(int(playerBuffer.Seconds()*float64(o.sampleRate)) * frameBytes)
	player.Play()

	return &otoVoice{player: player}, nil
}

// Suspend pauses the oto context
func (o *Oto) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.otoCtx == nil {
		return nil
	}
	return o.otoCtx.Suspend()
}

// Resume resumes the oto context
func (o *Oto) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.otoCtx == nil {
		return errors.New("output not initialized")
	}
	return o.otoCtx.Resume()
}

// Close suspends the context. The oto context itself lives for the process.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.otoCtx == nil {
		return nil
	}
	return o.otoCtx.Suspend()
}

type otoVoice struct {
	once   sync.Once
	player *oto.Player
	err    error
}

func (v *otoVoice) Close() error {
	v.once.Do(func() {
		v.player.Pause()
		v.err = v.player.Close()
	})
	return v.err
}
