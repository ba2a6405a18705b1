package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the [key.Binding]s of every view. List navigation and filtering keys belong to [list.Model].
type keyMap struct {
	open      key.Binding
	snapshot  key.Binding
	back      key.Binding
	confirm   key.Binding
	cancel    key.Binding
	playlists key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		snapshot:  key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter/s", "snapshot")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "capture")),
		cancel:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		playlists: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "playlists")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forView returns the bindings shown in the help line of view.
func (k keyMap) forView(view ViewState) []key.Binding {
	switch view {
	case PlaylistListView:
		return []key.Binding{k.open, k.quit}
	case TrackListView:
		return []key.Binding{k.snapshot, k.back, k.quit}
	case ConfirmView:
		return []key.Binding{k.confirm, k.cancel}
	case ResultView:
		return []key.Binding{k.playlists, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
