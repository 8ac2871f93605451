package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#E8A33D", "#04B575", "#FF4F4F", "#FFA500", "#5FAFFF", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	info  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
	panel lipgloss.Style
}

func NewPalette(t, s, e, w, i, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		info:  NewStyle(i),
		help:  NewEm(h),
		label: NewBold(t),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(h)).
			Padding(0, 1),
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
