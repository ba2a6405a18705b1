package formatter

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/samber/lo"
)

// TrackRow flattens a track into Name, Artists, Album, Duration (ms) and Popularity.
func TrackRow(t models.Track) *models.Row {
	return models.NewRow().
		Set("Name", t.Name).
		Set("Artists", t.ArtistNames()).
		Set("Album", t.Album.Name).
		Set("Duration (ms)", t.DurationMS).
		Set("Popularity", t.Popularity)
}

// AlbumRow flattens an album into Name, Artists, Release Date and Total Tracks.
func AlbumRow(a models.Album) *models.Row {
	return models.NewRow().
		Set("Name", a.Name).
		Set("Artists", models.JoinArtists(a.Artists)).
		Set("Release Date", a.ReleaseDate).
		Set("Total Tracks", a.TotalTracks)
}

// ArtistRow flattens an artist into Name, Genres and Popularity.
func ArtistRow(a models.Artist) *models.Row {
	return models.NewRow().
		Set("Name", a.Name).
		Set("Genres", strings.Join(a.Genres, ", ")).
		Set("Popularity", a.Popularity)
}

// PlaylistRow flattens a playlist into Name, Description, Owner, Tracks and Public.
func PlaylistRow(p models.SimplePlaylist) *models.Row {
	return models.NewRow().
		Set("Name", p.Name).
		Set("Description", p.Description).
		Set("Owner", p.Owner.DisplayName).
		Set("Tracks", p.Tracks.Total).
		Set("Public", p.Public)
}

// PlayHistoryRow flattens a recently played entry into Played At, Name, Artists and Album.
func PlayHistoryRow(h models.PlayHistory) *models.Row {
	return models.NewRow().
		Set("Played At", h.PlayedAt).
		Set("Name", h.Track.Name).
		Set("Artists", h.Track.ArtistNames()).
		Set("Album", h.Track.Album.Name)
}

func TrackRows(tracks []models.Track) []*models.Row {
	return lo.Map(tracks, func(t models.Track, _ int) *models.Row { return TrackRow(t) })
}

func AlbumRows(albums []models.Album) []*models.Row {
	return lo.Map(albums, func(a models.Album, _ int) *models.Row { return AlbumRow(a) })
}

func ArtistRows(artists []models.Artist) []*models.Row {
	return lo.Map(artists, func(a models.Artist, _ int) *models.Row { return ArtistRow(a) })
}

func PlaylistRows(playlists []models.SimplePlaylist) []*models.Row {
	return lo.Map(playlists, func(p models.SimplePlaylist, _ int) *models.Row { return PlaylistRow(p) })
}

func PlayHistoryRows(history []models.PlayHistory) []*models.Row {
	return lo.Map(history, func(h models.PlayHistory, _ int) *models.Row { return PlayHistoryRow(h) })
}

// SearchRows flattens the items of a search result for the searched kind.
func SearchRows(kind models.ItemKind, result *services.SearchResult) ([]*models.Row, error) {
	switch kind {
	case models.KindTrack:
		tracks, err := result.Tracks()
		if err != nil {
			return nil, err
		}
		return TrackRows(tracks), nil
	case models.KindAlbum:
		albums, err := result.Albums()
		if err != nil {
			return nil, err
		}
		return AlbumRows(albums), nil
	case models.KindArtist:
		artists, err := result.Artists()
		if err != nil {
			return nil, err
		}
		return ArtistRows(artists), nil
	case models.KindPlaylist:
		playlists, err := result.Playlists()
		if err != nil {
			return nil, err
		}
		return PlaylistRows(playlists), nil
	default:
		return nil, fmt.Errorf("unsupported item kind %d", kind)
	}
}
