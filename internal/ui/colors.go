package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette colors, adapting to light and dark terminals.
var (
	spotifyGreen = lipgloss.AdaptiveColor{Light: "#128C3F", Dark: "#1DB954"}
	okGreen      = lipgloss.AdaptiveColor{Light: "#027A48", Dark: "#04B575"}
	errRed       = lipgloss.AdaptiveColor{Light: "#C0162B", Dark: "#FF4D5E"}
	warnAmber    = lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFA500"}
	muted        = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#626262"}
)

var styles = newPalette()

// Styles is the palette shared by the TUI and CLI output.
var Styles = styles

// Palette renders the few text roles the TUI and CLI use.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func newPalette() *Palette {
	return &Palette{
		title: lipgloss.NewStyle().Foreground(spotifyGreen).Bold(true).MarginBottom(1),
		ok:    lipgloss.NewStyle().Foreground(okGreen).Bold(true),
		err:   lipgloss.NewStyle().Foreground(errRed).Bold(true),
		warn:  lipgloss.NewStyle().Foreground(warnAmber),
		help:  lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }
