package camelot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// Code is a position on the Camelot wheel. Letter A is minor and B is major.
type Code struct {
	Number int
	Mode   models.Mode
}

// wheel maps each Camelot position to its pitch class (0=C ... 11=B).
var wheel = map[Code]int{
	{1, models.Major}: 11, {1, models.Minor}: 8,
	{2, models.Major}: 6, {2, models.Minor}: 3,
	{3, models.Major}: 1, {3, models.Minor}: 10,
	{4, models.Major}: 8, {4, models.Minor}: 5,
	{5, models.Major}: 3, {5, models.Minor}: 0,
	{6, models.Major}: 10, {6, models.Minor}: 7,
	{7, models.Major}: 5, {7, models.Minor}: 2,
	{8, models.Major}: 0, {8, models.Minor}: 9,
	{9, models.Major}: 7, {9, models.Minor}: 4,
	{10, models.Major}: 2, {10, models.Minor}: 11,
	{11, models.Major}: 9, {11, models.Minor}: 6,
	{12, models.Major}: 4, {12, models.Minor}: 1,
}

// Letter returns "A" for minor and "B" for major.
func (c Code) Letter() string {
	if c.Mode == models.Major {
		return "B"
	}
	return "A"
}

func (c Code) String() string {
	return strconv.Itoa(c.Number) + c.Letter()
}

// Ordinal is the code's position on the wheel: 1A=10, 1B=11 ... 12B=121.
func (c Code) Ordinal() int {
	o := c.Number * 10
	if c.Mode == models.Major {
		o++
	}
	return o
}

// Valid reports whether c is one of the 24 wheel positions.
func (c Code) Valid() bool {
	_, ok := wheel[c]
	return ok
}

// Key converts c to its pitch-class/mode pair.
func (c Code) Key() (Key, error) {
	pc, ok := wheel[c]
	if !ok {
		return Key{}, fmt.Errorf("%w: %s", shared.ErrInvalidCamelotCode, c)
	}
	return Key{PitchClass: pc, Mode: c.Mode}, nil
}

// ParseCode reads a Camelot code such as "8a" or " 12B ".
//
// Input is trimmed and uppercased. The leading number must be 1-12 and the
// remaining suffix must be exactly "A" or "B".
func ParseCode(s string) (Code, error) {
	clean := strings.ToUpper(strings.TrimSpace(s))

	i := 0
	for i < len(clean) && clean[i] >= '0' && clean[i] <= '9' {
		i++
	}
	if i == 0 {
		return Code{}, fmt.Errorf("%w: %q has no number", shared.ErrInvalidCamelotCode, s)
	}

	n, err := strconv.Atoi(clean[:i])
	if err != nil || n < 1 || n > 12 {
		return Code{}, fmt.Errorf("%w: %q number out of range", shared.ErrInvalidCamelotCode, s)
	}

	var mode models.Mode
	switch clean[i:] {
	case "A":
		mode = models.Minor
	case "B":
		mode = models.Major
	default:
		return Code{}, fmt.Errorf("%w: %q suffix must be A or B", shared.ErrInvalidCamelotCode, s)
	}
	return Code{Number: n, Mode: mode}, nil
}

// ToInternal converts a Camelot code string to a pitch-class/mode pair.
func ToInternal(s string) (Key, error) {
	code, err := ParseCode(s)
	if err != nil {
		return Key{}, err
	}
	return code.Key()
}

// Codes returns all 24 wheel positions in ordinal order.
func Codes() []Code {
	codes := make([]Code, 0, len(wheel))
	for n := 1; n <= 12; n++ {
		codes = append(codes, Code{n, models.Minor}, Code{n, models.Major})
	}
	return codes
}
