package camelot

import (
	"fmt"
	"strings"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// Key is the internal key representation.
type Key struct {
	PitchClass int
	Mode       models.Mode
}

var pitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// roots is the enharmonic table for free-text parsing.
var roots = map[string]int{
	"C": 0, "B#": 0,
	"C#": 1, "Db": 1,
	"D": 2,
	"D#": 3, "Eb": 3,
	"E": 4, "Fb": 4,
	"F": 5, "E#": 5,
	"F#": 6, "Gb": 6,
	"G": 7,
	"G#": 8, "Ab": 8,
	"A": 9,
	"A#": 10, "Bb": 10,
	"B": 11, "Cb": 11,
}

var glyphs = strings.NewReplacer("♯", "#", "♭", "b")

// String returns a name such as "F# minor".
func (k Key) String() string {
	if k.PitchClass < 0 || k.PitchClass > 11 {
		return "unknown"
	}
	return pitchNames[k.PitchClass] + " " + k.Mode.String()
}

// Code returns the wheel position for k.
func (k Key) Code() (Code, bool) {
	return FromInternal(k.PitchClass, k.Mode)
}

// Weight is shorthand for Weight(k.PitchClass, k.Mode).
func (k Key) Weight() int {
	return Weight(k.PitchClass, k.Mode)
}

// FromFreeText parses key names such as "F#", "Gb minor", "Am" or "E♭ maj".
//
// Mode is minor when the lowercased text contains "m" but not "maj". The root
// is the first character uppercased, followed by a "#" or "b"/"B" accidental
// when one is present.
func FromFreeText(text string) (Key, error) {
	s := strings.TrimSpace(glyphs.Replace(text))
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty key", shared.ErrUnrecognizedKeyString)
	}

	lower := strings.ToLower(s)
	mode := models.Major
	if strings.Contains(lower, "m") && !strings.Contains(lower, "maj") {
		mode = models.Minor
	}

	root := strings.ToUpper(s[:1])
	if len(s) > 1 {
		switch s[1] {
		case '#':
			root += "#"
		case 'b', 'B':
			root += "b"
		}
	}

	pc, ok := roots[root]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", shared.ErrUnrecognizedKeyString, text)
	}
	return Key{PitchClass: pc, Mode: mode}, nil
}

// Parse reads either notation, trying Camelot first.
func Parse(text string) (Key, error) {
	if k, err := ToInternal(text); err == nil {
		return k, nil
	}
	return FromFreeText(text)
}
