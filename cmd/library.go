package main

import (
	"context"

	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
)

// LibrarySave saves tracks to the user's library.
func (r *Runner) LibrarySave(ctx context.Context, cmd *cli.Command) error {
	ids, err := requireArgs(cmd, 1, "track id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.SaveTracks(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("%s Saved %d tracks\n", ui.Styles.OK("✓"), len(ids))
}

// LibraryRemove removes tracks from the user's library.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	ids, err := requireArgs(cmd, 1, "track id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.RemoveTracks(ctx, ids); err != nil {
		return err
	}
	return r.writePlain("%s Removed %d tracks\n", ui.Styles.OK("✓"), len(ids))
}

// LibraryCheck reports whether each track is saved.
func (r *Runner) LibraryCheck(ctx context.Context, cmd *cli.Command) error {
	ids, err := requireArgs(cmd, 1, "track id")
	if err != nil {
		return err
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	saved, err := client.CheckSavedTracks(ctx, ids)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make(map[string]bool, len(ids))
		for i, id := range ids {
			out[id] = i < len(saved) && saved[i]
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for i, id := range ids {
		if i < len(saved) && saved[i] {
			r.writePlain("%s %s saved\n", ui.Styles.OK("✓"), id)
		} else {
			r.writePlain("%s %s not saved\n", ui.Styles.Err("✗"), id)
		}
	}
	return nil
}
