// internal/serialkey/bridge.go
// Package serialkey reads key contacts and the speed pot from a USB paddle
// adapter. The adapter firmware streams ASCII frames, one per line:
//
//	K<mask>  contact state; bit 0 dot lever, bit 1 dash lever, bit 2 straight key
//	P<raw>   speed pot reading 0..1023, mapped linearly onto the WPM range
//
// Frames arrive on state change, so the bridge latches the most recent of
// each and serves them to the engine loop without blocking.
package serialkey

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tarm/serial"

	"github.com/ColonelBlimp/cwkeyer/internal/keyer"
	"github.com/ColonelBlimp/cwkeyer/internal/recovery"
)

var (
	ErrInvalidPort    = errors.New("serial port name must not be empty")
	ErrInvalidBaud    = errors.New("baud rate must be positive")
	ErrAlreadyRunning = errors.New("serial reader already running")
	ErrNotRunning     = errors.New("serial reader not running")
)

// Key frame bit assignments
const (
	maskDot      = 1 << 0
	maskDash     = 1 << 1
	maskStraight = 1 << 2
)

// potMax is the full-scale pot reading from the adapter's 10-bit ADC
const potMax = 1023

// Port is the transport to the adapter. Satisfied by *serial.Port and by
// in-memory pipes in tests.
type Port interface {
	io.ReadCloser
}

// Config holds serial adapter configuration
type Config struct {
	// Port is the adapter device path (from config: serial_port)
	Port string
	// Baud is the adapter line rate (from config: serial_baud)
	Baud int
	// InitialWPM is the speed served before the first pot frame arrives
	InitialWPM int
}

// Bridge connects a serial key adapter to the engine. The latest contact
// state and pot speed live in atomics, so Sample and WPM are wait-free for
// the engine loop while the reader goroutine follows the port.
type Bridge struct {
	config  Config
	port    Port
	running bool
	done    chan struct{}
	mu      sync.RWMutex

	state     atomic.Uint32 // latest K frame bitmask
	wpm       atomic.Int32  // latest pot speed in WPM, pre-clamped
	malformed atomic.Uint64 // frames that failed to parse
}

// New creates a new adapter bridge. The initial speed is clamped into the
// supported WPM range so the bridge always serves a usable reading.
func New(cfg Config) *Bridge {
	b := &Bridge{config: cfg}
	b.wpm.Store(int32(clampWPM(cfg.InitialWPM)))
	return b
}

// Sample returns the latest contact state. Non-blocking and fast.
func (b *Bridge) Sample() keyer.KeyState {
	mask := b.state.Load()
	return keyer.KeyState{
		Dot:      mask&maskDot != 0,
		Dash:     mask&maskDash != 0,
		Straight: mask&maskStraight != 0,
	}
}

// WPM returns the latest pot speed. Non-blocking and fast.
func (b *Bridge) WPM() int {
	return int(b.wpm.Load())
}

// Malformed returns how many adapter frames failed to parse.
func (b *Bridge) Malformed() uint64 {
	return b.malformed.Load()
}

// Open connects to the configured serial port and starts the reader.
func (b *Bridge) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyRunning
	}
	if b.config.Port == "" {
		return ErrInvalidPort
	}
	if b.config.Baud <= 0 {
		return ErrInvalidBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name: b.config.Port,
		Baud: b.config.Baud,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", b.config.Port, err)
	}

	b.start(port)
	return nil
}

// Connect starts the reader over an already-open transport. Open is the
// production path; Connect exists so tests and tools can supply their own.
func (b *Bridge) Connect(port Port) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return ErrAlreadyRunning
	}

	b.start(port)
	return nil
}

// start is called with the mutex held.
func (b *Bridge) start(port Port) {
	b.port = port
	b.running = true
	b.done = make(chan struct{})

	done := b.done
	go func() {
		defer close(done)
		defer recovery.HandlePanicFunc(func() {
			_ = port.Close()
		})
		b.readLoop(port)
	}()
}

// Close stops the reader and releases the port.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return ErrNotRunning
	}
	port := b.port
	done := b.done
	b.port = nil
	b.running = false
	b.mu.Unlock()

	err := port.Close()
	<-done

	if err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

// Connected reports whether the reader is still following a live port.
func (b *Bridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return false
	}
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// readLoop scans adapter frames until the port closes or errors out.
func (b *Bridge) readLoop(port Port) {
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		b.parseFrame(strings.TrimSpace(scanner.Text()))
	}

	// A dropped adapter must not leave a contact latched closed
	b.state.Store(0)
}

// parseFrame applies one adapter line. Malformed frames are counted and
// skipped; the previous state stays in effect.
func (b *Bridge) parseFrame(line string) {
	if line == "" {
		return
	}
	if len(line) < 2 {
		b.malformed.Add(1)
		return
	}

	value, err := strconv.Atoi(line[1:])
	if err != nil || value < 0 {
		b.malformed.Add(1)
		return
	}

	switch line[0] {
	case 'K':
		if value > maskDot|maskDash|maskStraight {
			b.malformed.Add(1)
			return
		}
		b.state.Store(uint32(value))
	case 'P':
		if value > potMax {
			b.malformed.Add(1)
			return
		}
		// Same linear map the adapter firmware documents:
		// wpm = raw * (max-min) / 1023 + min
		b.wpm.Store(int32(value*(keyer.MaxWPM-keyer.MinWPM)/potMax + keyer.MinWPM))
	default:
		b.malformed.Add(1)
	}
}

func clampWPM(wpm int) int {
	if wpm < keyer.MinWPM {
		return keyer.MinWPM
	}
	if wpm > keyer.MaxWPM {
		return keyer.MaxWPM
	}
	return wpm
}
