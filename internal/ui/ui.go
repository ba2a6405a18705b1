package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	SnapshotView
	ResultView
)

// Browser lists the user's playlists and pages through their items.
type Browser interface {
	tasks.PlaylistSource
	AllUserPlaylists(ctx context.Context) ([]models.SimplePlaylist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	client       Browser
	tracker      *tasks.SnapshotTracker
	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	selected     *models.Playlist
	tracks       []models.Track
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.TrackResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, client Browser, tracker *tasks.SnapshotTracker) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		client:       client,
		tracker:      tracker,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case SnapshotView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlistList.Title = "Spotify Playlists"
		return m, m.playlistList.SetItems(playlistItems(data.playlists))

	case MsgTracksFetched:
		data := msg.data.(tracksFetched)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = data.playlist
		m.tracks = data.tracks
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", data.playlist.Name)
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, m.trackList.SetItems(trackItems(data.tracks))

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.done)

	case MsgSnapshotComplete:
		data := msg.data.(snapshotComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.Err(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case SnapshotView:
		return m.renderSnapshot()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				return m, m.fetchTracks(pl.playlist.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			return m, nil
		case key.Matches(msg, m.keys.snapshot):
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		m.view = SnapshotView
		return m, m.startSnapshot()
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.playlists):
		m.view = PlaylistListView
		m.selected = nil
		m.tracks = nil
		m.result = nil
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.client.AllUserPlaylists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, tracks, err := tasks.PlaylistTracks(m.ctx, m.client, playlistID)
		return tracksFetchedMsg(playlist, tracks, err)
	}
}

func (m *Model) startSnapshot() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.done = done
	m.progress = tasks.ProgressUpdate{}

	tracker := m.tracker
	playlistID := m.selected.ID
	tracker.Progress = progress

	go func() {
		result, err := tracker.Track(m.ctx, playlistID)
		done <- snapshotCompleteMsg(result, err)
		close(progress)
	}()

	return waitForProgress(progress, done)
}

// waitForProgress relays the next progress update, or the completion message once progress is closed.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.helpView())
}

func (m *Model) renderTrackList() string {
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.helpView())
}

func (m *Model) renderConfirm() string {
	title := styles.Title(fmt.Sprintf("Snapshot '%s'?", m.selected.Name))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\n\nThe capture is compared with the last stored snapshot.\n",
		m.selected.Name, len(m.tracks))

	return fmt.Sprintf("%s\n%s\n%s", title, info, m.helpView())
}

func (m *Model) renderSnapshot() string {
	title := styles.Title("Capturing Snapshot")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.FetchItems:
		phase = fmt.Sprintf("Fetching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Compare:
		phase = "Comparing with previous snapshot..."
	case tasks.SaveSnapshot:
		phase = "Saving snapshot..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.Help(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.helpView()

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.Err(fmt.Sprintf("Snapshot failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.Err("No result available"), helpView)
	}

	current := m.result.Current
	title := styles.OK(fmt.Sprintf("✓ Snapshot of '%s' saved", current.Name))
	info := fmt.Sprintf("\nTracks: %d\nCaptured: %s", len(current.TrackIDs), current.CapturedAt.Local().Format("2006-01-02 15:04:05"))

	if m.result.Previous == nil {
		return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, info, styles.Help("First snapshot of this playlist."), helpView)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nSince %s:", m.result.Previous.CapturedAt.Local().Format("2006-01-02 15:04:05"))
	if m.result.Diff.Empty() {
		b.WriteString("\n  no changes")
	}
	if n := len(m.result.Diff.Added); n > 0 {
		fmt.Fprintf(&b, "\n\n%s", styles.OK(fmt.Sprintf("Added %d tracks:", n)))
		for _, id := range m.result.Diff.Added {
			fmt.Fprintf(&b, "\n  + %s", m.trackLabel(id))
		}
	}
	if n := len(m.result.Diff.Removed); n > 0 {
		fmt.Fprintf(&b, "\n\n%s", styles.Warn(fmt.Sprintf("Removed %d tracks:", n)))
		for _, id := range m.result.Diff.Removed {
			fmt.Fprintf(&b, "\n  - %s", id)
		}
	}

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, b.String(), helpView)
}

func (m *Model) helpView() string {
	return m.help.ShortHelpView(m.keys.forView(m.view))
}

// trackLabel renders a track of the selected playlist by id, falling back to the id.
func (m *Model) trackLabel(id string) string {
	for _, t := range m.tracks {
		if t.ID == id {
			return t.String()
		}
	}
	return id
}
