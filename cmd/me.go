package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/urfave/cli/v3"
)

// MeTopTracks lists the user's top tracks for a time range.
func (r *Runner) MeTopTracks(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := services.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	page, err := client.TopTracks(ctx, timeRange, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch top tracks: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.TrackRows(page.Items), "top_tracks_"+string(timeRange)); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Top tracks (%s)", timeRange))
	r.printTracks(page.Items)
	return nil
}

// MeTopArtists lists the user's top artists for a time range.
func (r *Runner) MeTopArtists(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := services.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	page, err := client.TopArtists(ctx, timeRange, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch top artists: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.ArtistRows(page.Items), "top_artists_"+string(timeRange)); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Top artists (%s)", timeRange))
	r.printArtists(page.Items)
	return nil
}

// MeRecent lists recently played tracks, optionally bounded by --after or --before.
func (r *Runner) MeRecent(ctx context.Context, cmd *cli.Command) error {
	after, err := parseTimeMillis(cmd.String("after"))
	if err != nil {
		return err
	}
	before, err := parseTimeMillis(cmd.String("before"))
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	page, err := client.RecentlyPlayed(ctx, services.RecentlyPlayedOpts{
		After:  after,
		Before: before,
		Limit:  cmd.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch recently played: %w", err)
	}

	if ok, err := r.exportRows(cmd, formatter.PlayHistoryRows(page.Items), "recently_played"); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	if len(page.Items) == 0 {
		return r.writePlain("Nothing played recently\n")
	}
	r.writePlainHeader("Recently played")
	for _, h := range page.Items {
		r.writePlain("%s  %s - %s\n", playedAt(h.PlayedAt), h.Track.Name, h.Track.ArtistNames())
	}
	return nil
}

// parseTimeMillis accepts RFC 3339 or unix milliseconds. Empty input is 0.
func parseTimeMillis(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms >= 0 {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q, use RFC 3339 or unix milliseconds", shared.ErrInvalidFlag, s)
	}
	return t.UnixMilli(), nil
}

func playedAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format(time.DateTime)
}
