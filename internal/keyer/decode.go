// internal/keyer/decode.go
package keyer

import "time"

// Decoder turns the shared sequence into characters by watching elapsed
// silence. It is mode-agnostic: both input devices feed the same sequence
// and the same silence clock. Exactly one decode attempt happens per
// silence episode.
type Decoder struct {
	speed *SpeedController
	seq   *Sequence
	emit  func(Output)

	wordPending bool
}

// NewDecoder wires the decoder to the speed controller and the shared
// sequence. emit receives each decoded character and word boundary.
func NewDecoder(speed *SpeedController, seq *Sequence, emit func(Output)) *Decoder {
	return &Decoder{speed: speed, seq: seq, emit: emit}
}

// Service runs one segmentation pass. It does nothing while keying is in
// progress; otherwise it measures silence since the last release. Once the
// silence exceeds the character gap the accumulated pattern is resolved,
// with Unknown standing in for sequences outside the table, and the
// sequence is cleared whether or not the match succeeded. Once the silence
// also exceeds the word gap, exactly one word space follows the most recent
// character. Both checks share the same elapsed value, so a character and
// its word space can fire on the same pass after a long pause.
func (d *Decoder) Service(keying bool, now time.Time) {
	if keying {
		return
	}
	p := d.speed.Profile()
	silence := now.Sub(d.seq.LastRelease())
	if d.seq.Len() > 0 && silence > p.CharGap {
		d.emit(Output{Character: Lookup(d.seq.Pattern()), Timestamp: now, WPM: p.WPM})
		d.seq.Clear()
		d.wordPending = true
	}
	if d.wordPending && silence > p.WordGap {
		d.emit(Output{Character: ' ', IsWordSpace: true, Timestamp: now, WPM: p.WPM})
		d.wordPending = false
	}
}
