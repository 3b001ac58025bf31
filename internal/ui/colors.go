package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/camsort/internal/camelot"
	"github.com/desertthunder/camsort/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// wheelColors holds one hue per Camelot number, walking the color wheel so adjacent keys look alike.
var wheelColors = [12]string{
	"#56F1DA", "#7DF2AA", "#AEF589", "#E8DAA1", "#FDBFA7", "#FFA6BC",
	"#FFA1DC", "#EFA4F8", "#D2AAFA", "#BDB4FA", "#A9C6FA", "#68DEF5",
}

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var _ Painter = (*Palette)(nil)

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// KeyColor returns the wheel hue for a Camelot number, or the help gray for anything off the wheel.
func KeyColor(number int) lipgloss.Color {
	if number < 1 || number > 12 {
		return lipgloss.Color("#626262")
	}
	return lipgloss.Color(wheelColors[number-1])
}

// Key renders a track's Camelot label in its wheel color.
func (p *Palette) Key(t models.Track) string {
	label := camelot.Label(t)
	code, ok := camelot.FromInternal(t.Key, t.Mode)
	if !ok {
		return p.help.Render(label)
	}
	return p.As(label, KeyColor(code.Number))
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
