package camelot

import (
	"errors"
	"testing"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

func TestToInternal(t *testing.T) {
	t.Run("Wheel Table", func(t *testing.T) {
		tests := []struct {
			code  string
			pitch int
			mode  models.Mode
		}{
			{"1B", 11, models.Major}, {"1A", 8, models.Minor},
			{"2B", 6, models.Major}, {"2A", 3, models.Minor},
			{"3B", 1, models.Major}, {"3A", 10, models.Minor},
			{"4B", 8, models.Major}, {"4A", 5, models.Minor},
			{"5B", 3, models.Major}, {"5A", 0, models.Minor},
			{"6B", 10, models.Major}, {"6A", 7, models.Minor},
			{"7B", 5, models.Major}, {"7A", 2, models.Minor},
			{"8B", 0, models.Major}, {"8A", 9, models.Minor},
			{"9B", 7, models.Major}, {"9A", 4, models.Minor},
			{"10B", 2, models.Major}, {"10A", 11, models.Minor},
			{"11B", 9, models.Major}, {"11A", 6, models.Minor},
			{"12B", 4, models.Major}, {"12A", 1, models.Minor},
		}

		for _, tt := range tests {
			k, err := ToInternal(tt.code)
			if err != nil {
				t.Fatalf("ToInternal(%q) returned error: %v", tt.code, err)
			}
			if k.PitchClass != tt.pitch || k.Mode != tt.mode {
				t.Errorf("ToInternal(%q) = %v, want pitch %d %v", tt.code, k, tt.pitch, tt.mode)
			}
		}
	})

	t.Run("Trims And Uppercases", func(t *testing.T) {
		for _, in := range []string{"8a", " 8A ", "\t8a\n"} {
			k, err := ToInternal(in)
			if err != nil {
				t.Fatalf("ToInternal(%q) returned error: %v", in, err)
			}
			if k.PitchClass != 9 || k.Mode != models.Minor {
				t.Errorf("ToInternal(%q) = %v, want A minor", in, k)
			}
		}
	})

	t.Run("Invalid Codes", func(t *testing.T) {
		for _, in := range []string{"13A", "", "XYZ", "0B", "8", "8C", "8AB", "A8", "-1A"} {
			_, err := ToInternal(in)
			if !errors.Is(err, shared.ErrInvalidCamelotCode) {
				t.Errorf("ToInternal(%q) error = %v, want ErrInvalidCamelotCode", in, err)
			}
		}
	})
}

func TestWeight(t *testing.T) {
	t.Run("Matches Ordinal For Every Code", func(t *testing.T) {
		codes := Codes()
		if len(codes) != 24 {
			t.Fatalf("expected 24 codes, got %d", len(codes))
		}

		for _, c := range codes {
			k, err := ToInternal(c.String())
			if err != nil {
				t.Fatalf("ToInternal(%s) returned error: %v", c, err)
			}
			if got := Weight(k.PitchClass, k.Mode); got != c.Ordinal() {
				t.Errorf("Weight(ToInternal(%s)) = %d, want %d", c, got, c.Ordinal())
			}
		}
	})

	t.Run("Ordinal Endpoints", func(t *testing.T) {
		tests := map[string]int{"1A": 10, "1B": 11, "8A": 80, "12A": 120, "12B": 121}
		for in, want := range tests {
			c, err := ParseCode(in)
			if err != nil {
				t.Fatalf("ParseCode(%q) returned error: %v", in, err)
			}
			if c.Ordinal() != want {
				t.Errorf("Ordinal(%s) = %d, want %d", in, c.Ordinal(), want)
			}
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		for _, c := range Codes() {
			k, _ := c.Key()
			back, ok := k.Code()
			if !ok {
				t.Fatalf("no code for %v", k)
			}
			if back != c {
				t.Errorf("round trip %s -> %v -> %s", c, k, back)
			}
		}
	})

	t.Run("Unknown Pair", func(t *testing.T) {
		if got := Weight(-1, models.Major); got != UnknownWeight {
			t.Errorf("Weight(-1) = %d, want %d", got, UnknownWeight)
		}
		if got := Weight(12, models.Minor); got != UnknownWeight {
			t.Errorf("Weight(12) = %d, want %d", got, UnknownWeight)
		}
	})

	t.Run("Track Label", func(t *testing.T) {
		tr := models.NewTrack("1", "Song", "Artist", 0)
		if got := Label(tr); got != "-" {
			t.Errorf("Label(unresolved) = %q, want -", got)
		}
		tr.Key, tr.Mode = 9, models.Minor
		if got := Label(tr); got != "8A" {
			t.Errorf("Label = %q, want 8A", got)
		}
		if got := TrackWeight(tr); got != 80 {
			t.Errorf("TrackWeight = %d, want 80", got)
		}
	})
}

func TestFromFreeText(t *testing.T) {
	t.Run("Recognized Keys", func(t *testing.T) {
		tests := []struct {
			in    string
			pitch int
			mode  models.Mode
		}{
			{"C", 0, models.Major},
			{"F#", 6, models.Major},
			{"Gb minor", 6, models.Minor},
			{"Am", 9, models.Minor},
			{"A minor", 9, models.Minor},
			{"E major", 4, models.Major},
			{"Eb Maj", 3, models.Major},
			{"E♭m", 3, models.Minor},
			{"C♯", 1, models.Major},
			{"BB", 10, models.Major},
			{"b minor", 11, models.Minor},
			{"  D  ", 2, models.Major},
		}

		for _, tt := range tests {
			k, err := FromFreeText(tt.in)
			if err != nil {
				t.Fatalf("FromFreeText(%q) returned error: %v", tt.in, err)
			}
			if k.PitchClass != tt.pitch || k.Mode != tt.mode {
				t.Errorf("FromFreeText(%q) = %v, want %d %v", tt.in, k, tt.pitch, tt.mode)
			}
		}
	})

	t.Run("Unrecognized Keys", func(t *testing.T) {
		for _, in := range []string{"", "   ", "H minor", "8A", "?"} {
			_, err := FromFreeText(in)
			if !errors.Is(err, shared.ErrUnrecognizedKeyString) {
				t.Errorf("FromFreeText(%q) error = %v, want ErrUnrecognizedKeyString", in, err)
			}
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("Prefers Camelot", func(t *testing.T) {
		k, err := Parse("5A")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if k.PitchClass != 0 || k.Mode != models.Minor {
			t.Errorf("Parse(5A) = %v, want C minor", k)
		}
	})

	t.Run("Falls Back To Free Text", func(t *testing.T) {
		k, err := Parse("C")
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if k.Weight() != 81 {
			t.Errorf("Parse(C).Weight() = %d, want 81", k.Weight())
		}
	})

	t.Run("Both Fail", func(t *testing.T) {
		_, err := Parse("XYZ")
		if !errors.Is(err, shared.ErrUnrecognizedKeyString) {
			t.Errorf("Parse(XYZ) error = %v, want ErrUnrecognizedKeyString", err)
		}
	})

	t.Run("Key String", func(t *testing.T) {
		k := Key{PitchClass: 6, Mode: models.Minor}
		if k.String() != "F# minor" {
			t.Errorf("String() = %q", k.String())
		}
		if (Key{PitchClass: 14}).String() != "unknown" {
			t.Error("expected unknown for out of range pitch class")
		}
	})
}
