package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/urfave/cli/v3"
)

// BrowseNewReleases lists newly released albums.
func (r *Runner) BrowseNewReleases(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	page, err := client.NewReleases(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch new releases: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.AlbumRows(page.Items), "new_releases"); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader("New releases")
	r.printAlbums(page.Items)
	return nil
}

// BrowseFeatured lists featured playlists.
func (r *Runner) BrowseFeatured(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	page, err := client.FeaturedPlaylists(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch featured playlists: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.PlaylistRows(page.Items), "featured_playlists"); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Featured playlists")
	r.printPlaylists(page.Items, 0)
	return nil
}

// BrowseRecommendations lists tracks recommended from the seed flags.
func (r *Runner) BrowseRecommendations(ctx context.Context, cmd *cli.Command) error {
	seeds := services.Seeds{
		Tracks:  cmd.StringSlice("track"),
		Artists: cmd.StringSlice("artist"),
		Genres:  cmd.StringSlice("genre"),
	}
	if len(seeds.Tracks)+len(seeds.Artists)+len(seeds.Genres) == 0 {
		return fmt.Errorf("%w: at least one --track, --artist or --genre seed", shared.ErrMissingArgument)
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	tracks, err := client.Recommendations(ctx, seeds, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch recommendations: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.TrackRows(tracks), "recommendations"); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Recommended tracks")
	r.printTracks(tracks)
	return nil
}
