package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgTracksFetched
	MsgProgressUpdate
	MsgSnapshotComplete
)

type playlistsFetched struct {
	playlists []models.SimplePlaylist
	err       error
}

type tracksFetched struct {
	playlist *models.Playlist
	tracks   []models.Track
	err      error
}

type snapshotComplete struct {
	result *tasks.TrackResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.SimplePlaylist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, err}}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist *models.Playlist, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: tracksFetched{playlist, tracks, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// snapshotCompleteMsg is the constructor for [MsgSnapshotComplete]
func snapshotCompleteMsg(result *tasks.TrackResult, err error) Msg {
	return Msg{kind: MsgSnapshotComplete, data: snapshotComplete{result, err}}
}
