// internal/keyer/speed.go
package keyer

import "time"

// Morse code timing ratios (ITU standard)
// These are fixed ratios defined by the International Telecommunication Union
const (
	// DashDotRatio is the ratio of dash duration to dot duration (ITU: 3:1)
	DashDotRatio = 3
	// ElementGapRatio is the ratio of the gap between elements within a
	// character to a dot (ITU: 1:1)
	ElementGapRatio = 1
	// CharGapRatio is the ratio of the gap between characters to a dot (ITU: 3:1)
	CharGapRatio = 3
	// WordGapRatio is the ratio of the gap between words to a dot (ITU: 7:1)
	WordGapRatio = 7

	// DotMsPerWPM converts words per minute to a dot duration: with the
	// standard word PARIS at 50 dot units, dot_ms = 1200 / WPM
	DotMsPerWPM = 1200

	// MinWPM is the slowest supported speed setting
	MinWPM = 5
	// MaxWPM is the fastest supported speed setting
	MaxWPM = 40
	// DefaultWPM is the starting speed setting
	DefaultWPM = 15
)

// SpeedProfile holds the element durations and silence thresholds for one
// speed setting. Every field is a pure function of WPM; profiles are
// recomputed on a speed change, never interpolated mid-element.
type SpeedProfile struct {
	// WPM is the speed setting this profile was derived from
	WPM int
	// Dot is the dot duration, 1200/WPM ms by integer division
	Dot time.Duration
	// Dash is the dash duration, three dots
	Dash time.Duration
	// ElementGap is the silence between elements of one character, one dot
	ElementGap time.Duration
	// CharGap is the silence threshold that ends a character, three dots
	CharGap time.Duration
	// WordGap is the silence threshold that ends a word, seven dots
	WordGap time.Duration
}

// ProfileForWPM derives the full timing profile for a speed setting.
// The caller guarantees wpm is positive; readings arrive pre-clamped to
// [MinWPM, MaxWPM] so no divide-by-zero path exists.
func ProfileForWPM(wpm int) SpeedProfile {
	dot := time.Duration(DotMsPerWPM/wpm) * time.Millisecond
	return SpeedProfile{
		WPM:        wpm,
		Dot:        dot,
		Dash:       DashDotRatio * dot,
		ElementGap: ElementGapRatio * dot,
		CharGap:    CharGapRatio * dot,
		WordGap:    WordGapRatio * dot,
	}
}

// SpeedController republishes the timing profile whenever the external speed
// reading changes. Recomputing only on change keeps an element that is
// mid-flight classified against the duration it started with.
type SpeedController struct {
	profile   SpeedProfile
	published bool
}

// NewSpeedController returns a controller with no published profile yet;
// the first Refresh always reports a change.
func NewSpeedController() *SpeedController {
	return &SpeedController{}
}

// Refresh compares the reading against the published profile and recomputes
// the derived durations when it differs. It returns the current profile and
// whether it changed on this call.
func (c *SpeedController) Refresh(wpm int) (SpeedProfile, bool) {
	if c.published && wpm == c.profile.WPM {
		return c.profile, false
	}
	c.profile = ProfileForWPM(wpm)
	c.published = true
	return c.profile, true
}

// Profile returns the most recently published profile.
func (c *SpeedController) Profile() SpeedProfile {
	return c.profile
}
