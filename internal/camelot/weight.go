package camelot

import "github.com/desertthunder/camsort/internal/models"

// UnknownWeight sorts pairs that are not on the wheel after every real position.
const UnknownWeight = 990

// reverse is the inverse of wheel. Each pitch class appears once per mode.
var reverse = make(map[Key]Code, 24)

func init() {
	for code, pc := range wheel {
		k := Key{PitchClass: pc, Mode: code.Mode}
		if prev, dup := reverse[k]; dup {
			panic("camelot: " + k.String() + " maps to both " + prev.String() + " and " + code.String())
		}
		reverse[k] = code
	}
}

// Weight returns the wheel ordinal of a pitch-class/mode pair, or [UnknownWeight].
func Weight(pitchClass int, mode models.Mode) int {
	code, ok := reverse[Key{PitchClass: pitchClass, Mode: mode}]
	if !ok {
		return UnknownWeight
	}
	return code.Ordinal()
}

// TrackWeight is [Weight] applied to a track's enrichment state.
func TrackWeight(t models.Track) int {
	return Weight(t.Key, t.Mode)
}

// FromInternal returns the Camelot position for a pitch-class/mode pair.
func FromInternal(pitchClass int, mode models.Mode) (Code, bool) {
	code, ok := reverse[Key{PitchClass: pitchClass, Mode: mode}]
	return code, ok
}

// Label returns the Camelot code for a track, or "-" when it is unresolved.
func Label(t models.Track) string {
	if t.Key < 0 {
		return "-"
	}
	code, ok := FromInternal(t.Key, t.Mode)
	if !ok {
		return "-"
	}
	return code.String()
}
