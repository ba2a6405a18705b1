package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/tasks"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
)

// Search runs one search per query argument. Several queries are searched concurrently.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	queries := cmd.Args().Slice()
	if len(queries) == 0 {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	kind, err := models.ParseKind(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if len(queries) == 1 {
		result, err := client.Search(ctx, queries[0], kind, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return r.renderSearch(cmd, kind, []tasks.SearchOutcome{{Query: queries[0], Result: result}})
	}

	outcomes, err := tasks.SearchAll(ctx, client, queries, kind, limit, tasks.SearchAllOpts{
		Workers: cmd.Int("workers"),
	})
	if err != nil {
		return err
	}
	return r.renderSearch(cmd, kind, outcomes)
}

func (r *Runner) renderSearch(cmd *cli.Command, kind models.ItemKind, outcomes []tasks.SearchOutcome) error {
	if len(outcomes) == 1 && outcomes[0].Err == nil {
		res := outcomes[0].Result
		rows, err := formatter.SearchRows(kind, res)
		if err != nil {
			return err
		}
		if ok, err := r.exportRows(cmd, rows, "search_"+kind.String()); ok || err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(res.Raw, cmd.Bool("pretty"))
		}
		return r.printSearchResult(kind, res)
	}

	if cmd.String("export") != "" {
		rows, err := searchOutcomeRows(kind, outcomes)
		if err != nil {
			return err
		}
		_, err = r.exportRows(cmd, rows, "search_"+kind.String())
		return err
	}

	if cmd.Bool("json") {
		raw := map[string]any{}
		for _, o := range outcomes {
			if o.Err != nil {
				raw[o.Query] = map[string]string{"error": o.Err.Error()}
				continue
			}
			raw[o.Query] = o.Result.Raw
		}
		return r.writeJSON(raw, cmd.Bool("pretty"))
	}

	failed := 0
	for _, o := range outcomes {
		r.writePlainln("%s", ui.Styles.Title(o.Query))
		if o.Err != nil {
			failed++
			r.writePlain("%s %v\n", ui.Styles.Err("✗"), o.Err)
			continue
		}
		if err := r.printSearchResult(kind, o.Result); err != nil {
			return err
		}
	}
	if failed > 0 {
		r.logger.Warn("some searches failed", "failed", failed, "total", len(outcomes))
	}
	return nil
}

// searchOutcomeRows flattens every successful outcome into rows led by a Query column.
func searchOutcomeRows(kind models.ItemKind, outcomes []tasks.SearchOutcome) ([]*models.Row, error) {
	rows := []*models.Row{}
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		items, err := formatter.SearchRows(kind, o.Result)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			row := models.NewRow().Set("Query", o.Query)
			for _, col := range item.Columns() {
				v, _ := item.Get(col)
				row.Set(col, v)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *Runner) printSearchResult(kind models.ItemKind, res *services.SearchResult) error {
	if res.Len() == 0 {
		return r.writePlain("No %ss found for %q\n", kind, res.Query)
	}

	r.writePlain("%s\n", ui.Styles.Help(fmt.Sprintf("Showing %d of %d %ss", res.Len(), res.Total(), kind)))

	switch kind {
	case models.KindTrack:
		tracks, err := res.Tracks()
		if err != nil {
			return err
		}
		r.printTracks(tracks)
	case models.KindAlbum:
		albums, err := res.Albums()
		if err != nil {
			return err
		}
		r.printAlbums(albums)
	case models.KindArtist:
		artists, err := res.Artists()
		if err != nil {
			return err
		}
		r.printArtists(artists)
	case models.KindPlaylist:
		playlists, err := res.Playlists()
		if err != nil {
			return err
		}
		r.printPlaylists(playlists, 0)
	}
	return nil
}

func (r *Runner) printTracks(tracks []models.Track) {
	for i, t := range tracks {
		r.writePlain("%3d. %s - %s [%s]  %s\n", i+1, t.Name, t.ArtistNames(),
			shared.FormatDuration(t.DurationMS), ui.Styles.Help(t.ID))
	}
}

func (r *Runner) printAlbums(albums []models.Album) {
	for i, a := range albums {
		r.writePlain("%3d. %s - %s (%s, %d tracks)  %s\n", i+1, a.Name, models.JoinArtists(a.Artists),
			a.ReleaseDate, a.TotalTracks, ui.Styles.Help(a.ID))
	}
}

func (r *Runner) printArtists(artists []models.Artist) {
	for i, a := range artists {
		genres := ""
		if len(a.Genres) > 0 {
			genres = " [" + strings.Join(a.Genres, ", ") + "]"
		}
		r.writePlain("%3d. %s (%d followers)%s  %s\n", i+1, a.Name, a.Followers.Total, genres, ui.Styles.Help(a.ID))
	}
}

func (r *Runner) printPlaylists(playlists []models.SimplePlaylist, offset int) {
	for i, p := range playlists {
		r.writePlain("%3d. %s by %s (%d tracks, %s)  %s\n", offset+i+1, p.Name, p.Owner.DisplayName,
			p.Tracks.Total, shared.VisibilityString(p.Public), ui.Styles.Help(p.ID))
	}
}
