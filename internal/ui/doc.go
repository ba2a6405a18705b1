// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for tracking playlist changes:
//  1. [PlaylistListView] : Browse the current user's playlists
//  2. [TrackListView] : Preview the tracks of the selected playlist
//  3. [ConfirmView] : Confirm taking a snapshot
//  4. [SnapshotView] : Monitor real-time progress updates
//  5. [ResultView] : Display tracks added and removed since the previous snapshot
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.SnapshotTracker].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
