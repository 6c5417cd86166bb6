// internal/keyer/schedule.go
package keyer

import "time"

// Scheduler owns the non-blocking start and stop of one keyed element. At
// most one element is ever active; while one is, no new element may start.
// Start is only reachable through Ready, so activating over a live element
// is impossible by construction.
type Scheduler struct {
	speed *SpeedController
	act   Actuator
	seq   *Sequence

	active  bool
	stopAt  time.Time
	readyAt time.Time
}

// NewScheduler wires the element timer to the speed controller, the
// actuator, and the shared sequence.
func NewScheduler(speed *SpeedController, act Actuator, seq *Sequence) *Scheduler {
	return &Scheduler{speed: speed, act: act, seq: seq}
}

// Ready reports whether a new element may start: nothing active and the
// inter-element gap after the previous element has elapsed.
func (s *Scheduler) Ready(now time.Time) bool {
	return !s.active && !now.Before(s.readyAt)
}

// Active reports whether an element is currently keying.
func (s *Scheduler) Active() bool {
	return s.active
}

// Start begins keying an element: actuator on, marker appended, stop and
// next-ready deadlines derived from the live profile. Callers must check
// Ready first.
func (s *Scheduler) Start(kind Element, now time.Time) {
	p := s.speed.Profile()
	d := p.Dot
	if kind == Dash {
		d = p.Dash
	}
	s.act.Activate()
	s.seq.Append(kind)
	s.active = true
	s.stopAt = now.Add(d)
	s.readyAt = s.stopAt.Add(p.ElementGap)
}

// Tick services a due element stop: actuator off, element cleared, release
// recorded on the silence clock. It reports whether an element completed on
// this call, which the iambic keyer uses for its completion memory.
func (s *Scheduler) Tick(now time.Time) bool {
	if !s.active || now.Before(s.stopAt) {
		return false
	}
	s.act.Deactivate()
	s.active = false
	s.seq.MarkRelease(now)
	return true
}

// ResetGap clears a stale inter-element gap so the next press starts
// immediately. Called when both paddles are open.
func (s *Scheduler) ResetGap(now time.Time) {
	if !s.active {
		s.readyAt = now
	}
}

// Abort drops an in-flight element and forces the actuator off, used only
// at engine shutdown.
func (s *Scheduler) Abort() {
	if s.active {
		s.active = false
		s.act.Deactivate()
	}
}
