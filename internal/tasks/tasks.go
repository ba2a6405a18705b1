package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
)

// itemsPageSize is the maximum page size of the playlist items endpoint.
const itemsPageSize = 100

// PlaylistSource fetches playlists and their items. [services.SpotifyClient] implements it.
type PlaylistSource interface {
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)
	PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistItem], error)
}

// Searcher runs a single catalog search. [services.SpotifyClient] implements it.
type Searcher interface {
	Search(ctx context.Context, query string, kind models.ItemKind, limit int) (*services.SearchResult, error)
}

var (
	_ PlaylistSource = (*services.SpotifyClient)(nil)
	_ Searcher       = (*services.SpotifyClient)(nil)
)

// fetchPlaylistTracks loads a playlist and every track it contains, following the
// items pagination. Items without a resolvable track are skipped.
func fetchPlaylistTracks(ctx context.Context, source PlaylistSource, playlistID string, progress chan<- ProgressUpdate) (*models.Playlist, []models.Track, error) {
	if source == nil {
		return nil, nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := source.Playlist(ctx, playlistID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}

	tracks := make([]models.Track, 0, playlist.Tracks.Total)
	page := playlist.Tracks
	for {
		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, *item.Track)
		}

		fetched := page.Offset + len(page.Items)
		sendProgress(progress, fetchItemsUpdate(fetched, page.Total, playlist.Name))

		if !page.HasNext() || len(page.Items) == 0 {
			break
		}

		next, err := source.PlaylistItems(ctx, playlistID, itemsPageSize, fetched)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch items of playlist %s at offset %d: %w", playlistID, fetched, err)
		}
		page = *next
	}

	return playlist, tracks, nil
}

// PlaylistTracks loads a playlist and all of its resolvable tracks in order.
func PlaylistTracks(ctx context.Context, source PlaylistSource, playlistID string) (*models.Playlist, []models.Track, error) {
	return fetchPlaylistTracks(ctx, source, playlistID, nil)
}
