package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/samber/lo"
)

type playlistItem struct {
	playlist models.SimplePlaylist
}

func (i playlistItem) Title() string { return i.playlist.Name }

// FilterValue matches on name and owner so "/alice" narrows to one user's playlists.
func (i playlistItem) FilterValue() string {
	return i.playlist.Name + " " + i.playlist.Owner.DisplayName
}

func (i playlistItem) Description() string {
	parts := []string{
		fmt.Sprintf("%d tracks", i.playlist.Tracks.Total),
		shared.VisibilityString(i.playlist.Public),
	}
	if i.playlist.Collaborative {
		parts = append(parts, "collaborative")
	}
	if owner := i.playlist.Owner.DisplayName; owner != "" {
		parts = append(parts, "by "+owner)
	}
	return strings.Join(parts, " • ")
}

type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.String() }

func (i trackItem) Title() string {
	if i.track.Explicit {
		return i.track.Name + " [E]"
	}
	return i.track.Name
}

func (i trackItem) Description() string {
	parts := lo.Compact([]string{i.track.ArtistNames(), i.track.Album.Name})
	return fmt.Sprintf("%s [%s]", strings.Join(parts, " • "), shared.FormatDuration(i.track.DurationMS))
}

func playlistItems(playlists []models.SimplePlaylist) []list.Item {
	return lo.Map(playlists, func(pl models.SimplePlaylist, _ int) list.Item { return playlistItem{playlist: pl} })
}

func trackItems(tracks []models.Track) []list.Item {
	return lo.Map(tracks, func(t models.Track, _ int) list.Item { return trackItem{track: t} })
}
