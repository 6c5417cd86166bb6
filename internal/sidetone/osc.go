// internal/sidetone/osc.go
package sidetone

import "math"

// oscillator generates a sine tone one sample at a time using the two-term
// resonator recurrence s0 = 2cos(ω)·s1 - s2, so the audio thread does no
// trigonometry per sample. Phase is continuous across keying edges.
type oscillator struct {
	coefficient float64 // Pre-computed: 2 * cos(2π * frequency / sampleRate)
	s1          float64 // previous sample
	s2          float64 // sample before that
}

// newOscillator seeds the recurrence so the first emitted sample is sin(0).
func newOscillator(frequency, sampleRate float64) *oscillator {
	omega := 2.0 * math.Pi * frequency / sampleRate
	return &oscillator{
		coefficient: 2.0 * math.Cos(omega),
		s1:          math.Sin(-omega),
		s2:          math.Sin(-2.0 * omega),
	}
}

// next returns the next sample in the range [-1.0, 1.0].
func (o *oscillator) next() float64 {
	s0 := o.coefficient*o.s1 - o.s2
	o.s2 = o.s1
	o.s1 = s0
	return s0
}
