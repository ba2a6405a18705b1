package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
)

// PlayerPlay starts playback of the given tracks or context, or resumes when neither is given.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	opts := services.PlaybackOpts{
		DeviceID:   cmd.String("device"),
		ContextURI: cmd.String("context"),
	}
	if ids := cmd.Args().Slice(); len(ids) > 0 {
		opts.URIs = services.TrackURIs(ids)
	}

	if err := client.StartPlayback(ctx, opts); err != nil {
		return err
	}
	return r.writePlain("%s Playing\n", ui.Styles.OK("▶"))
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.PausePlayback(ctx, cmd.String("device")); err != nil {
		return err
	}
	return r.writePlain("%s Paused\n", ui.Styles.OK("⏸"))
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.SkipNext(ctx, cmd.String("device")); err != nil {
		return err
	}
	return r.writePlain("%s Skipped to next track\n", ui.Styles.OK("⏭"))
}

// PlayerPrevious skips to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.SkipPrevious(ctx, cmd.String("device")); err != nil {
		return err
	}
	return r.writePlain("%s Skipped to previous track\n", ui.Styles.OK("⏮"))
}

// PlayerVolume sets the volume, 0 to 100.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1, "volume percent")
	if err != nil {
		return err
	}

	percent, err := strconv.Atoi(args[0])
	if err != nil || percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100, got %q", shared.ErrInvalidArgument, args[0])
	}

	client, err := r.client()
	if err != nil {
		return err
	}

	if err := client.SetVolume(ctx, percent, cmd.String("device")); err != nil {
		return err
	}
	return r.writePlain("%s Volume set to %d%%\n", ui.Styles.OK("✓"), percent)
}
