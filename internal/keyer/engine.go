// internal/keyer/engine.go
package keyer

import (
	"context"
	"sync"
	"time"
)

// DefaultTickInterval is the Run loop period used when the config leaves
// TickInterval zero. One millisecond is comfortably finer than the 30ms dot
// at the fastest supported speed.
const DefaultTickInterval = time.Millisecond

// Config holds the wiring and initial settings for an Engine.
type Config struct {
	// Mode selects the input device (from config: mode)
	Mode Mode
	// WPM is the initial speed setting, also the fixed speed when no Speed
	// source is wired (from config: wpm)
	WPM int
	// TickInterval is the Run loop period; zero selects DefaultTickInterval
	TickInterval time.Duration
	// Clock supplies the current time; nil selects time.Now
	Clock Clock
	// Speed supplies live speed readings; nil fixes the speed at WPM
	Speed SpeedSource
	// Keys supplies contact samples; nil reads every contact open
	Keys KeySampler
	// Act drives the sidetone and indicator; nil discards activations
	Act Actuator
}

// DefaultConfig returns the standard trainer settings: iambic Mode A at the
// default speed, no external wiring.
func DefaultConfig() Config {
	return Config{
		Mode: ModeIambicA,
		WPM:  DefaultWPM,
	}
}

// fixedSpeed supplies a constant pre-clamped speed reading.
type fixedSpeed int

func (f fixedSpeed) WPM() int { return int(f) }

// openKeys reports every contact open.
type openKeys struct{}

func (openKeys) Sample() KeyState { return KeyState{} }

// noopActuator discards activations.
type noopActuator struct{}

func (noopActuator) Activate()   {}
func (noopActuator) Deactivate() {}

// Engine composes the speed controller, the element scheduler, the selected
// input mode, and the decoder into one cooperative control loop. All keying
// state is touched only from the loop goroutine, so no locking discipline
// is needed beyond the callback registry; correctness rests on the ordering
// of checks within one iteration.
type Engine struct {
	cfg   Config
	clock Clock
	tick  time.Duration
	src   SpeedSource
	keys  KeySampler

	speed    *SpeedController
	seq      *Sequence
	sched    *Scheduler
	iambic   *IambicKeyer
	straight *StraightKey
	dec      *Decoder

	mu       sync.Mutex
	running  bool
	outputCb *OutputCallback
	speedCb  *SpeedCallback
	timingCb *TimingCallback
	noticeCb *NoticeCallback
}

// NewEngine validates the config and builds the component graph for the
// selected mode.
func NewEngine(cfg Config) (*Engine, error) {
	switch cfg.Mode {
	case ModeNone, ModeIambicA, ModeIambicB, ModeStraight:
	default:
		return nil, ErrInvalidMode
	}
	if cfg.WPM < MinWPM || cfg.WPM > MaxWPM {
		return nil, ErrInvalidWPM
	}
	if cfg.TickInterval < 0 {
		return nil, ErrInvalidTick
	}

	e := &Engine{
		cfg:   cfg,
		clock: cfg.Clock,
		tick:  cfg.TickInterval,
		src:   cfg.Speed,
		keys:  cfg.Keys,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.tick == 0 {
		e.tick = DefaultTickInterval
	}
	if e.src == nil {
		e.src = fixedSpeed(cfg.WPM)
	}
	if e.keys == nil {
		e.keys = openKeys{}
	}
	act := cfg.Act
	if act == nil {
		act = noopActuator{}
	}

	e.speed = NewSpeedController()
	e.seq = NewSequence()
	e.dec = NewDecoder(e.speed, e.seq, e.dispatchOutput)
	switch cfg.Mode {
	case ModeIambicA, ModeIambicB:
		e.sched = NewScheduler(e.speed, act, e.seq)
		e.iambic = NewIambicKeyer(cfg.Mode, e.sched)
	case ModeStraight:
		e.straight = NewStraightKey(e.speed, act, e.seq, e.dispatchTiming)
	}
	return e, nil
}

// Mode returns the configured input mode.
func (e *Engine) Mode() Mode {
	return e.cfg.Mode
}

// SetOutputCallback sets the callback for decoded characters and word
// boundaries.
func (e *Engine) SetOutputCallback(cb OutputCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb == nil {
		e.outputCb = nil
	} else {
		e.outputCb = &cb
	}
}

// SetSpeedCallback sets the callback for speed changes.
func (e *Engine) SetSpeedCallback(cb SpeedCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb == nil {
		e.speedCb = nil
	} else {
		e.speedCb = &cb
	}
}

// SetTimingCallback sets the callback for straight-key press timings.
func (e *Engine) SetTimingCallback(cb TimingCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb == nil {
		e.timingCb = nil
	} else {
		e.timingCb = &cb
	}
}

// SetNoticeCallback sets the callback for operator notices.
func (e *Engine) SetNoticeCallback(cb NoticeCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cb == nil {
		e.noticeCb = nil
	} else {
		e.noticeCb = &cb
	}
}

// Tick runs one loop iteration at the given instant. The ordering is fixed:
// speed refresh first, then element-stop servicing, then input sampling and
// new-element evaluation, then segmentation. A just-completed element's gap
// is therefore already in force before the next start decision.
func (e *Engine) Tick(now time.Time) {
	if p, changed := e.speed.Refresh(e.src.WPM()); changed {
		e.dispatchSpeed(p)
	}
	switch e.cfg.Mode {
	case ModeIambicA, ModeIambicB:
		if e.sched.Tick(now) {
			e.iambic.ElementCompleted()
		}
		e.iambic.Service(e.keys.Sample(), now)
		e.dec.Service(e.sched.Active(), now)
	case ModeStraight:
		e.straight.Service(e.keys.Sample(), now)
		e.dec.Service(e.straight.Down(), now)
	default:
		// No input mode: the loop still runs, producing no symbols.
		e.dec.Service(false, now)
	}
}

// Run drives Tick from a ticker until ctx is done, then returns nil. It
// returns ErrAlreadyRunning if the loop is already active. An in-flight
// element is forced off on the way out so the sidetone cannot stick on.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.abort()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	if e.cfg.Mode == ModeNone {
		e.dispatchNotice("no input mode is active; check the mode setting")
	}

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Tick(e.clock())
		}
	}
}

func (e *Engine) abort() {
	switch e.cfg.Mode {
	case ModeIambicA, ModeIambicB:
		e.sched.Abort()
	case ModeStraight:
		e.straight.Abort()
	}
}

func (e *Engine) dispatchOutput(out Output) {
	e.mu.Lock()
	cb := e.outputCb
	e.mu.Unlock()
	if cb != nil {
		(*cb)(out)
	}
}

func (e *Engine) dispatchSpeed(p SpeedProfile) {
	e.mu.Lock()
	cb := e.speedCb
	e.mu.Unlock()
	if cb != nil {
		(*cb)(p)
	}
}

func (e *Engine) dispatchTiming(t ElementTiming) {
	e.mu.Lock()
	cb := e.timingCb
	e.mu.Unlock()
	if cb != nil {
		(*cb)(t)
	}
}

func (e *Engine) dispatchNotice(notice string) {
	e.mu.Lock()
	cb := e.noticeCb
	e.mu.Unlock()
	if cb != nil {
		(*cb)(notice)
	}
}
