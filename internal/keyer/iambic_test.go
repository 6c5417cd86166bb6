package keyer

import (
	"testing"
	"time"
)

// iambicRig steps an iambic keyer with a fake clock at 15 WPM, mirroring
// the engine's per-tick ordering: element-stop servicing before paddle
// evaluation.
type iambicRig struct {
	act   *fakeActuator
	seq   *Sequence
	sched *Scheduler
	keyer *IambicKeyer
	now   time.Time
}

func newIambicRig(mode Mode) *iambicRig {
	speed := NewSpeedController()
	speed.Refresh(15)
	r := &iambicRig{
		act: &fakeActuator{},
		seq: NewSequence(),
		now: time.Unix(0, 0),
	}
	r.sched = NewScheduler(speed, r.act, r.seq)
	r.keyer = NewIambicKeyer(mode, r.sched)
	return r
}

// hold advances the clock in 1ms ticks with the paddles in one state.
func (r *iambicRig) hold(state KeyState, d time.Duration) {
	until := r.now.Add(d)
	for r.now.Before(until) {
		r.now = r.now.Add(time.Millisecond)
		if r.sched.Tick(r.now) {
			r.keyer.ElementCompleted()
		}
		r.keyer.Service(state, r.now)
	}
}

func squeeze() KeyState  { return KeyState{Dot: true, Dash: true} }
func dotOnly() KeyState  { return KeyState{Dot: true} }
func dashOnly() KeyState { return KeyState{Dash: true} }
func open() KeyState     { return KeyState{} }

func TestIambic_FirstSqueezeSendsDash(t *testing.T) {
	for _, mode := range []Mode{ModeIambicA, ModeIambicB} {
		r := newIambicRig(mode)
		r.hold(squeeze(), 10*time.Millisecond)
		if got := r.seq.Pattern(); got != "-" {
			t.Errorf("mode %v: first squeeze sent %q, want %q", mode, got, "-")
		}
	}
}

func TestIambic_SqueezeAlternates(t *testing.T) {
	// At 15 WPM a held squeeze starting with a dash produces elements at
	// 1ms (dash), 321ms (dot), 481ms (dash), 801ms (dot), 961ms (dash).
	for _, mode := range []Mode{ModeIambicA, ModeIambicB} {
		r := newIambicRig(mode)
		r.hold(squeeze(), time.Second)
		if got := r.seq.Pattern(); got != "-.-.-" {
			t.Errorf("mode %v: held squeeze sent %q, want %q", mode, got, "-.-.-")
		}
	}
}

func TestIambic_DotPaddleRepeatsDots(t *testing.T) {
	// Dot cycle is dot (80ms) + gap (80ms): starts at 1, 161, ..., 961ms.
	r := newIambicRig(ModeIambicA)
	r.hold(dotOnly(), time.Second)
	if got := r.seq.Pattern(); got != "......." {
		t.Errorf("held dot paddle sent %q, want 7 dots", got)
	}
}

func TestIambic_DashPaddleRepeatsDashes(t *testing.T) {
	// Dash cycle is dash (240ms) + gap (80ms): starts at 1, 321, 641, 961ms.
	r := newIambicRig(ModeIambicA)
	r.hold(dashOnly(), time.Second)
	if got := r.seq.Pattern(); got != "----" {
		t.Errorf("held dash paddle sent %q, want 4 dashes", got)
	}
}

func TestIambic_SqueezeAfterDotsAlternatesFromLastSent(t *testing.T) {
	r := newIambicRig(ModeIambicA)
	r.hold(dotOnly(), 100*time.Millisecond)
	r.hold(squeeze(), 200*time.Millisecond)
	// The dot finishes at 81ms; at 161ms the squeeze alternates to dash.
	if got := r.seq.Pattern(); got != ".-" {
		t.Errorf("dot then squeeze sent %q, want %q", got, ".-")
	}
}

func TestIambicModeA_NoTrailingElement(t *testing.T) {
	r := newIambicRig(ModeIambicA)
	r.hold(squeeze(), 100*time.Millisecond) // dash in flight until 241ms
	r.hold(open(), time.Second)
	if got := r.seq.Pattern(); got != "-" {
		t.Errorf("Mode A released mid-dash sent %q, want %q", got, "-")
	}
	if r.act.activates != 1 || r.act.deactivates != 1 {
		t.Errorf("actuator cycles = %d/%d, want 1/1", r.act.activates, r.act.deactivates)
	}
}

func TestIambicModeA_ReleaseDuringGapStopsKeying(t *testing.T) {
	r := newIambicRig(ModeIambicA)
	r.hold(squeeze(), 250*time.Millisecond) // dash done at 241ms, inside the gap
	r.hold(open(), time.Second)
	if got := r.seq.Pattern(); got != "-" {
		t.Errorf("Mode A released during gap sent %q, want %q", got, "-")
	}
}

func TestIambicModeA_NextPressNotDelayedByStaleGap(t *testing.T) {
	r := newIambicRig(ModeIambicA)
	r.hold(dotOnly(), 90*time.Millisecond)
	r.hold(open(), 500*time.Millisecond)
	before := r.seq.Len()
	// ResetGap has collapsed the stale inter-element gap, so this press
	// starts on the very next tick.
	r.hold(dashOnly(), 2*time.Millisecond)
	if r.seq.Len() != before+1 {
		t.Errorf("press after long idle did not start immediately: len %d, want %d", r.seq.Len(), before+1)
	}
}

func TestIambicModeB_TrailingOppositeAfterFullRelease(t *testing.T) {
	r := newIambicRig(ModeIambicB)
	r.hold(squeeze(), 100*time.Millisecond) // dash started under squeeze
	r.hold(open(), time.Second)
	// The dash finishes at 241ms; completion memory queues the dot, which
	// fires once the gap elapses even with both levers open.
	if got := r.seq.Pattern(); got != "-." {
		t.Errorf("Mode B released mid-dash sent %q, want %q", got, "-.")
	}
}

func TestIambicModeB_DotReleaseDuringDashStillSendsDot(t *testing.T) {
	r := newIambicRig(ModeIambicB)
	r.hold(squeeze(), 100*time.Millisecond)  // dash sending, both levers closed
	r.hold(dashOnly(), 300*time.Millisecond) // dot lever released before the dash ends
	r.hold(open(), time.Second)
	// The dash completes at 241ms and the completion memory owes one dot,
	// which fires at 321ms while the dash lever is still held. The held
	// lever must not override it, and nothing follows once the levers open.
	if got := r.seq.Pattern(); got != "-." {
		t.Errorf("Mode B dot release during dash sent %q, want %q", got, "-.")
	}
}

func TestIambicModeB_TrailingElementFiresOnlyOnce(t *testing.T) {
	r := newIambicRig(ModeIambicB)
	r.hold(squeeze(), 100*time.Millisecond)
	r.hold(open(), 2*time.Second)
	if got := r.seq.Pattern(); got != "-." {
		t.Errorf("completion memory fired more than once: %q", got)
	}
}

func TestIambicModeB_SingleLeverHasNoMemory(t *testing.T) {
	// An element started without a squeeze must not arm the memory.
	r := newIambicRig(ModeIambicB)
	r.hold(dashOnly(), 100*time.Millisecond)
	r.hold(open(), time.Second)
	if got := r.seq.Pattern(); got != "-" {
		t.Errorf("Mode B single lever sent %q, want %q", got, "-")
	}
}

func TestIambic_OpenLeversSendNothing(t *testing.T) {
	r := newIambicRig(ModeIambicB)
	r.hold(open(), time.Second)
	if r.seq.Len() != 0 {
		t.Errorf("open levers sent %q, want nothing", r.seq.Pattern())
	}
	if r.act.activates != 0 {
		t.Errorf("actuator activated %d times with open levers", r.act.activates)
	}
}
