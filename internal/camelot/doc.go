// Package camelot converts between Camelot wheel codes ("8A"), free-text key
// names ("F#", "Gb minor") and the internal pitch-class/mode pair stored on a
// [models.Track].
//
// The 24-entry wheel table in this package is the only hand-written mapping.
// The reverse table used by [Weight] is built from it at init, so for every
// code C, Weight(ToInternal(C)) equals C's ordinal.
package camelot
