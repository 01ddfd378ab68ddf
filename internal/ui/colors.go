package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorTitle = "#7D56F4"
	colorHigh  = "#04B575"
	colorLow   = "#FF0000"
	colorMid   = "#FFA500"
	colorMuted = "#626262"
)

var styles = NewPalette()

// struct Palette holds the [lipgloss.Style] values of the movie detail view
type Palette struct {
	title   lipgloss.Style
	label   lipgloss.Style
	missing lipgloss.Style
	err     lipgloss.Style

	// IMDB score bands
	high lipgloss.Style
	mid  lipgloss.Style
	low  lipgloss.Style
}

func NewPalette() *Palette {
	return &Palette{
		title:   NewBold(colorTitle).MarginBottom(1),
		label:   NewBold(colorMuted).Width(16),
		missing: NewEm(colorMuted),
		err:     NewBold(colorLow),
		high:    NewBold(colorHigh),
		mid:     NewStyle(colorMid),
		low:     NewStyle(colorLow),
	}
}

// score picks the band for an IMDB score: 7 and up is high, below 5 is low.
func (p *Palette) score(v float64) lipgloss.Style {
	switch {
	case v >= 7:
		return p.high
	case v < 5:
		return p.low
	default:
		return p.mid
	}
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
