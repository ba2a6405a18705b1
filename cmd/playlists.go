package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/repositories"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/tasks"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// requireArgs returns the positional arguments, failing when fewer than n were given.
func requireArgs(cmd *cli.Command, n int, what string) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < n {
		return nil, fmt.Errorf("%w: %s", shared.ErrMissingArgument, what)
	}
	return args, nil
}

// PlaylistsList lists the current user's playlists, one page or all of them.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	var playlists []models.SimplePlaylist
	total, offset := 0, cmd.Int("offset")

	if cmd.Bool("all") {
		if playlists, err = client.AllUserPlaylists(ctx); err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		total, offset = len(playlists), 0
	} else {
		page, err := client.UserPlaylists(ctx, cmd.Int("limit"), offset)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		playlists, total = page.Items, page.Total
	}

	r.logger.Debug("fetched playlists", "count", len(playlists), "total", total)

	if ok, err := r.exportRows(cmd, formatter.PlaylistRows(playlists), "playlists"); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	r.writePlainHeader(fmt.Sprintf("Playlists (%d of %d)", len(playlists), total))
	r.printPlaylists(playlists, offset)
	return nil
}

// PlaylistsShow prints a playlist's details followed by every track.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	playlist, tracks, err := tasks.PlaylistTracks(ctx, client, args[0])
	if err != nil {
		return err
	}

	if ok, err := r.exportRows(cmd, formatter.TrackRows(tracks), "playlist_"+playlist.ID); ok || err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"playlist": playlist, "tracks": tracks}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("%s\n", playlist.Description)
	}
	r.writePlain("Owner:      %s\n", playlist.Owner.DisplayName)
	r.writePlain("Visibility: %s\n", shared.VisibilityString(playlist.Public))
	r.writePlain("Followers:  %d\n", playlist.Followers.Total)
	r.writePlain("Tracks:     %d\n\n", len(tracks))
	r.printTracks(tracks)
	return nil
}

// PlaylistsCreate creates an empty playlist owned by the current user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist name")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve current user: %w", err)
	}

	playlist, err := client.CreatePlaylist(ctx, user.ID, args[0], cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return err
	}

	return r.writePlain("%s Created playlist %s (%s)\n", ui.Styles.OK("✓"), playlist.Name, playlist.ID)
}

// PlaylistsGenerate creates a playlist from the given tracks, or from recommendations seeded by top tracks.
func (r *Runner) PlaylistsGenerate(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist name")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	playlist, err := client.GeneratePlaylist(ctx, services.GeneratePlaylistOpts{
		Name:        args[0],
		Description: cmd.String("description"),
		Public:      cmd.Bool("public"),
		TrackIDs:    args[1:],
		SeedCount:   cmd.Int("seeds"),
		Limit:       cmd.Int("limit"),
	})

	var partial *shared.PartialPlaylistError
	if errors.As(err, &partial) {
		r.writePlain("%s Created playlist %s (%s) but could not add tracks\n", ui.Styles.Warn("!"), playlist.Name, playlist.ID)
		return err
	}
	if err != nil {
		return err
	}

	return r.writePlain("%s Generated playlist %s (%s) with %d tracks\n",
		ui.Styles.OK("✓"), playlist.Name, playlist.ID, playlist.Tracks.Total)
}

// PlaylistsAdd appends tracks to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 2, "playlist id and at least one track id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	snapshotID, err := client.AddTracksToPlaylist(ctx, args[0], services.TrackURIs(args[1:]))
	if err != nil {
		return err
	}

	r.logger.Debug("tracks added", "playlist", args[0], "snapshot", snapshotID)
	return r.writePlain("%s Added %d tracks to %s\n", ui.Styles.OK("✓"), len(args)-1, args[0])
}

// PlaylistsRemove removes every occurrence of the given tracks from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 2, "playlist id and at least one track id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	snapshotID, err := client.RemoveTracksFromPlaylist(ctx, args[0], services.TrackURIs(args[1:]))
	if err != nil {
		return err
	}

	r.logger.Debug("tracks removed", "playlist", args[0], "snapshot", snapshotID)
	return r.writePlain("%s Removed %d tracks from %s\n", ui.Styles.OK("✓"), len(args)-1, args[0])
}

// PlaylistsReorder moves a range of tracks within a playlist.
func (r *Runner) PlaylistsReorder(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	start, before, length := cmd.Int("start"), cmd.Int("before"), cmd.Int("length")
	if _, err := client.ReorderPlaylistTracks(ctx, args[0], start, before, length); err != nil {
		return err
	}

	return r.writePlain("%s Moved %d tracks from position %d to before %d\n", ui.Styles.OK("✓"), length, start, before)
}

// PlaylistsUpdate changes the details given as flags and leaves the rest untouched.
func (r *Runner) PlaylistsUpdate(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist id")
	if err != nil {
		return err
	}

	details := services.PlaylistDetails{Name: cmd.String("name")}
	if cmd.IsSet("description") {
		details.Description = lo.ToPtr(cmd.String("description"))
	}
	if cmd.IsSet("public") {
		details.Public = lo.ToPtr(cmd.Bool("public"))
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.UpdatePlaylistDetails(ctx, args[0], details); err != nil {
		return err
	}

	return r.writePlain("%s Updated playlist %s\n", ui.Styles.OK("✓"), args[0])
}

// tracker opens the snapshot store. The returned func closes it.
func (r *Runner) tracker(ctx context.Context, source tasks.PlaylistSource) (*tasks.SnapshotTracker, func(), error) {
	db, err := r.openDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}

	repo := repositories.NewSnapshotRepository(db)
	tracker := tasks.NewSnapshotTracker(source, repo, r.logger)
	return tracker, func() { db.Close() }, nil
}

// PlaylistsSnapshot records the playlist's tracks and prints the changes since the previous snapshot.
func (r *Runner) PlaylistsSnapshot(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	tracker, done, err := r.tracker(ctx, client)
	if err != nil {
		return err
	}
	defer done()

	result, err := tracker.Track(ctx, args[0])
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	current := result.Current
	r.writePlain("%s Snapshot %s of %s (%d tracks)\n", ui.Styles.OK("✓"), current.ID, current.Name, len(current.TrackIDs))
	if result.Previous == nil {
		return r.writePlain("First snapshot of this playlist\n")
	}

	r.writePlain("Compared with snapshot %s from %s\n", result.Previous.ID, result.Previous.CapturedAt.Local().Format(time.DateTime))
	return r.printDiff(result.Diff)
}

// PlaylistsHistory lists stored snapshots of a playlist, newest first.
func (r *Runner) PlaylistsHistory(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "playlist id")
	if err != nil {
		return err
	}

	tracker, done, err := r.tracker(ctx, nil)
	if err != nil {
		return err
	}
	defer done()

	snapshots, err := tracker.History(ctx, args[0])
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshots, cmd.Bool("pretty"))
	}
	if len(snapshots) == 0 {
		return r.writePlain("No snapshots recorded for %s\n", args[0])
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d snapshots)", snapshots[0].Name, len(snapshots)))
	for _, s := range snapshots {
		r.writePlain("%s  %s  %d tracks\n", s.CapturedAt.Local().Format(time.DateTime), s.ID, len(s.TrackIDs))
	}
	return nil
}

// PlaylistsDiff compares two stored snapshots.
func (r *Runner) PlaylistsDiff(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 2, "old and new snapshot ids")
	if err != nil {
		return err
	}

	tracker, done, err := r.tracker(ctx, nil)
	if err != nil {
		return err
	}
	defer done()

	diff, err := tracker.Compare(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(diff, cmd.Bool("pretty"))
	}
	return r.printDiff(diff)
}

func (r *Runner) printDiff(diff models.SnapshotDiff) error {
	if diff.Empty() {
		return r.writePlain("No changes\n")
	}
	for _, id := range diff.Added {
		r.writePlain("%s %s\n", ui.Styles.OK("+"), id)
	}
	for _, id := range diff.Removed {
		r.writePlain("%s %s\n", ui.Styles.Err("-"), id)
	}
	return r.writePlain("%d added, %d removed\n", len(diff.Added), len(diff.Removed))
}

// PlaylistsExport writes each playlist's tracks to its own file plus a manifest.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 && !cmd.Bool("all") {
		return fmt.Errorf("%w: playlist ids or --all", shared.ErrMissingArgument)
	}

	name := cmd.String("format")
	if name == "" {
		name = r.config.Export.Format
	}
	format, err := formatter.ParseFormat(name)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = filepath.Join(r.config.Export.Directory, "spotify_export_"+strconv.FormatInt(time.Now().Unix(), 10))
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		playlists, err := client.AllUserPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		ids = lo.Uniq(append(ids, lo.Map(playlists, func(p models.SimplePlaylist, _ int) string { return p.ID })...))
	}

	r.logger.Info("exporting playlists", "count", len(ids), "format", format, "dir", dir)

	progress := make(chan tasks.ProgressUpdate, len(ids)*2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	result, err := tasks.ExportPlaylists(ctx, progress, client, ids, tasks.BulkExportOpts{
		Format:    format,
		OutputDir: dir,
		Workers:   cmd.Int("workers"),
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainln("%s Exported %d of %d playlists to %s", ui.Styles.OK("✓"), result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("%s %s: %s\n", ui.Styles.Err("✗"), res.PlaylistName, res.ErrorMessage)
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}
