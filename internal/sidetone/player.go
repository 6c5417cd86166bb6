// internal/sidetone/player.go
// Package sidetone renders the keying signal as an audible tone on the
// default playback device. The engine flips the tone with Activate and
// Deactivate; a short gain ramp at each edge keeps the keying click-free.
package sidetone

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized    = errors.New("sidetone player not initialized")
	ErrAlreadyRunning    = errors.New("sidetone player already running")
	ErrNotRunning        = errors.New("sidetone player not running")
	ErrInvalidFrequency  = errors.New("tone frequency must be positive and less than Nyquist frequency")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidVolume     = errors.New("volume must be between 0.0 and 1.0")
	ErrInvalidChannels   = errors.New("channels must be 1 or 2")
	ErrInvalidBufferSize = errors.New("buffer size must be positive")
)

// envelopeMs is the gain ramp length at each keying edge. Long enough to
// suppress key clicks, short enough to stay inaudible as a rise time.
const envelopeMs = 5.0

// Config holds sidetone playback configuration
type Config struct {
	// Frequency is the tone pitch in Hz (from config: frequency)
	Frequency float64
	// SampleRate is the playback sample rate in Hz (from config: sample_rate)
	SampleRate float64
	// Channels is the playback channel count (from config: channels)
	Channels int
	// Volume is the tone amplitude from 0.0 to 1.0 (from config: volume)
	Volume float64
	// BufferSize is frames per callback; smaller means lower keying latency
	BufferSize uint32
}

// DefaultConfig returns sensible defaults for a CW sidetone
func DefaultConfig() Config {
	return Config{
		Frequency:  650,
		SampleRate: 48000,
		Channels:   1,
		Volume:     0.4,
		BufferSize: 128,
	}
}

// Player renders the keying signal through the default playback device.
// Activate and Deactivate only flip an atomic flag, so they are safe to call
// from the engine loop on every element edge.
type Player struct {
	config  Config
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running bool
	mu      sync.RWMutex

	keyed atomic.Bool

	// Audio-thread state, touched only inside the device callback
	osc  *oscillator
	gain float64
	step float64
}

// New creates a new sidetone player.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Player, error) {
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	nyquist := cfg.SampleRate / 2.0
	if cfg.Frequency <= 0 || cfg.Frequency >= nyquist {
		return nil, ErrInvalidFrequency
	}
	if cfg.Volume < 0.0 || cfg.Volume > 1.0 {
		return nil, ErrInvalidVolume
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, ErrInvalidChannels
	}
	if cfg.BufferSize == 0 {
		return nil, ErrInvalidBufferSize
	}

	return &Player{
		config: cfg,
		osc:    newOscillator(cfg.Frequency, cfg.SampleRate),
		step:   1.0 / (cfg.SampleRate * envelopeMs / 1000.0),
	}, nil
}

// Activate turns the tone on. Non-blocking and fast.
func (p *Player) Activate() {
	p.keyed.Store(true)
}

// Deactivate turns the tone off. Non-blocking and fast.
func (p *Player) Deactivate() {
	p.keyed.Store(false)
}

// Init initializes the audio backend
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	p.ctx = ctx

	return nil
}

// Start opens the playback device and begins rendering. The tone stays
// silent until Activate is called. Playback stops when ctx is cancelled.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	if p.ctx == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	p.mu.Unlock()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(p.config.Channels)
	deviceConfig.SampleRate = uint32(p.config.SampleRate)
	deviceConfig.PeriodSizeInFrames = p.config.BufferSize
	deviceConfig.Alsa.NoMMap = 1

	// Callback pulls tone samples
	onSendFrames := func(outputSamples, inputSamples []byte, frameCount uint32) {
		p.renderFrames(outputSamples, frameCount)
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: onSendFrames,
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start playback device: %w", err)
	}

	p.mu.Lock()
	p.device = device
	p.running = true
	p.mu.Unlock()

	// Wait for context cancellation
	go func() {
		<-ctx.Done()
		_ = p.Stop()
	}()

	return nil
}

// Stop stops playback
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrNotRunning
	}

	if p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
	}

	p.running = false
	return nil
}

// Close releases all audio resources
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running && p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
		p.running = false
	}

	if p.ctx != nil {
		if err := p.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		p.ctx.Free()
		p.ctx = nil
	}

	return nil
}

// IsRunning returns true if playback is active
func (p *Player) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// renderFrames fills the output buffer with the current tone state. Runs on
// the audio thread; must be non-blocking and allocation-free. The gain walks
// toward the keyed target one step per sample, which yields a linear ramp of
// envelopeMs at every keying edge.
func (p *Player) renderFrames(out []byte, frameCount uint32) {
	target := 0.0
	if p.keyed.Load() {
		target = 1.0
	}

	channels := p.config.Channels
	volume := p.config.Volume

	for i := 0; i < int(frameCount); i++ {
		if p.gain < target {
			p.gain += p.step
			if p.gain > target {
				p.gain = target
			}
		} else if p.gain > target {
			p.gain -= p.step
			if p.gain < target {
				p.gain = target
			}
		}

		sample := float32(p.osc.next() * p.gain * volume)
		bits := math.Float32bits(sample)

		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * 4
			if offset+4 > len(out) {
				return
			}
			// Little-endian float32
			out[offset] = byte(bits)
			out[offset+1] = byte(bits >> 8)
			out[offset+2] = byte(bits >> 16)
			out[offset+3] = byte(bits >> 24)
		}
	}
}
