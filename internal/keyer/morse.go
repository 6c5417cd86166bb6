// internal/keyer/morse.go
package keyer

// Unknown is emitted when an accumulated sequence matches no table entry,
// so the operator can see that a mis-keyed character was attempted.
const Unknown = '?'

// MaxPattern is the longest sequence retained between decodes. Table
// patterns are at most five elements; anything longer is already unknown.
const MaxPattern = 8

// MorseTable is the character lookup for the 36-symbol alphanumeric set,
// laid out as a binary heap over the element path: parent at i, dot child
// at 2i, dash child at 2i+1, root at index 1. Patterns outside A-Z and 0-9
// resolve to zero entries. Static, never mutated at runtime.
var MorseTable = [64]rune{
	// depth 0-1: root, E(.), T(-)
	0, 0, 'E', 'T',
	// depth 2: I A N M
	'I', 'A', 'N', 'M',
	// depth 3: S U R W D K G O
	'S', 'U', 'R', 'W', 'D', 'K', 'G', 'O',
	// depth 4: H V F . L . P J B X C Y Z Q . .
	'H', 'V', 'F', 0, 'L', 0, 'P', 'J',
	'B', 'X', 'C', 'Y', 'Z', 'Q', 0, 0,
	// depth 5: digits 5 4 3 2 1 down the dot side, 6 7 8 9 0 down the dash side
	'5', '4', 0, '3', 0, 0, 0, '2',
	0, 0, 0, 0, 0, 0, 0, '1',
	'6', 0, 0, 0, 0, 0, 0, 0,
	'7', 0, 0, 0, '8', 0, '9', '0',
}

// Lookup resolves a '.'/'-' pattern to its character, or Unknown when the
// pattern is empty, malformed, too long, or not in the alphanumeric set.
func Lookup(pattern string) rune {
	idx := 1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '.':
			idx = idx * 2
		case '-':
			idx = idx*2 + 1
		default:
			return Unknown
		}
		if idx >= len(MorseTable) {
			return Unknown
		}
	}
	if idx <= 1 {
		return Unknown
	}
	if ch := MorseTable[idx]; ch != 0 {
		return ch
	}
	return Unknown
}

// PatternFor is the inverse of Lookup: the '.'/'-' sequence that keys a
// character. Lowercase letters fold to their table entries; ok is false for
// characters outside the alphanumeric set.
func PatternFor(c rune) (pattern string, ok bool) {
	if c == 0 {
		return "", false
	}
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 2; i < len(MorseTable); i++ {
		if MorseTable[i] != c {
			continue
		}
		// The path is the index's binary digits below the leading 1:
		// walking back up, an even node was a dot step, an odd one a dash.
		marks := make([]byte, 0, 5)
		for n := i; n > 1; n /= 2 {
			if n%2 == 0 {
				marks = append(marks, '.')
			} else {
				marks = append(marks, '-')
			}
		}
		for l, r := 0, len(marks)-1; l < r; l, r = l+1, r-1 {
			marks[l], marks[r] = marks[r], marks[l]
		}
		return string(marks), true
	}
	return "", false
}
