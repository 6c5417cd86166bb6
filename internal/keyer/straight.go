// internal/keyer/straight.go
package keyer

import "time"

// StraightKey classifies manual press and release transitions into elements.
// The operator controls the actuator directly, so no scheduler arbitration
// is involved; the only decision is taken at release time, when the held
// duration is measured against the live profile.
type StraightKey struct {
	speed    *SpeedController
	act      Actuator
	seq      *Sequence
	onTiming func(ElementTiming)

	down      bool
	pressedAt time.Time
}

// NewStraightKey wires the classifier to the speed controller, the actuator,
// and the shared sequence. onTiming receives one report per accepted press
// and may be nil.
func NewStraightKey(speed *SpeedController, act Actuator, seq *Sequence, onTiming func(ElementTiming)) *StraightKey {
	return &StraightKey{speed: speed, act: act, seq: seq, onTiming: onTiming}
}

// Down reports whether the key contact is currently closed.
func (k *StraightKey) Down() bool {
	return k.down
}

// Service detects press and release edges in the sampled contact state.
func (k *StraightKey) Service(state KeyState, now time.Time) {
	switch {
	case state.Straight && !k.down:
		k.down = true
		k.pressedAt = now
		k.act.Activate()
	case !state.Straight && k.down:
		k.down = false
		k.act.Deactivate()
		k.seq.MarkRelease(now)
		k.classify(now.Sub(k.pressedAt), now)
	}
}

// classify maps a held duration onto an element using midpoint thresholds
// between the dot and dash bands. Thresholds come from the profile at
// release time, so a mid-press speed change applies to the whole press.
// A press shorter than half a dot is contact bounce and is dropped without
// a symbol.
func (k *StraightKey) classify(held time.Duration, now time.Time) {
	p := k.speed.Profile()
	half := p.Dot / 2
	var kind Element
	var nominal time.Duration
	switch {
	case held >= p.Dash-half:
		kind, nominal = Dash, p.Dash
	case held >= p.Dot-half:
		kind, nominal = Dot, p.Dot
	default:
		return
	}
	k.seq.Append(kind)
	if k.onTiming != nil {
		k.onTiming(ElementTiming{Kind: kind, Held: held, Nominal: nominal, Timestamp: now})
	}
}

// Abort forces the key up, used only at engine shutdown.
func (k *StraightKey) Abort() {
	if k.down {
		k.down = false
		k.act.Deactivate()
	}
}
