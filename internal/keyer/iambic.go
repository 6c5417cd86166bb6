// internal/keyer/iambic.go
package keyer

import "time"

// IambicKeyer resolves paddle contact state into automatic dot and dash
// elements. A squeeze (both levers closed) alternates element kinds; Mode B
// adds the completion memory of the classic keyer chips: an element that
// starts under a squeeze queues the opposite kind when it completes, even
// if the operator has let go of one or both levers by then. Mode A has no
// such memory, so opening both levers ends keying at the element boundary.
type IambicKeyer struct {
	mode  Mode
	sched *Scheduler

	lastSent        Element
	sentAny         bool
	pendingOpposite bool
	squeezeAtStart  bool
}

// NewIambicKeyer returns a keyer in the given iambic mode driving the
// scheduler.
func NewIambicKeyer(mode Mode, sched *Scheduler) *IambicKeyer {
	return &IambicKeyer{mode: mode, sched: sched}
}

// ElementCompleted records the end of the in-flight element. In Mode B an
// element that started under a squeeze arms the completion memory here.
func (k *IambicKeyer) ElementCompleted() {
	if k.mode == ModeIambicB && k.squeezeAtStart {
		k.pendingOpposite = true
	}
	k.squeezeAtStart = false
}

// Service evaluates one transition for the sampled paddle state. Paddle
// inputs are boolean and total, so every combination has a defined
// transition and no error paths exist.
func (k *IambicKeyer) Service(state KeyState, now time.Time) {
	if !k.sched.Ready(now) {
		return
	}
	if k.pendingOpposite {
		k.pendingOpposite = false
		k.send(k.lastSent.Opposite(), state, now)
		return
	}
	switch {
	case state.Dot && state.Dash:
		// Alternate, sending a dash on the very first squeeze.
		next := Dash
		if k.sentAny && k.lastSent == Dash {
			next = Dot
		}
		k.send(next, state, now)
	case state.Dot:
		k.send(Dot, state, now)
	case state.Dash:
		k.send(Dash, state, now)
	default:
		// Open levers: collapse the stale gap so the next press is not
		// delayed, and in Mode A drop any half-formed intention.
		k.sched.ResetGap(now)
		if k.mode == ModeIambicA {
			k.pendingOpposite = false
		}
	}
}

func (k *IambicKeyer) send(kind Element, state KeyState, now time.Time) {
	k.sched.Start(kind, now)
	k.lastSent = kind
	k.sentAny = true
	k.squeezeAtStart = state.Dot && state.Dash
}
