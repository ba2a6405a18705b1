package tasks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/samber/lo"
)

// CaptureSnapshot records the ordered track ids of a playlist.
func CaptureSnapshot(ctx context.Context, source PlaylistSource, playlistID string) (*models.PlaylistSnapshot, error) {
	return captureSnapshot(ctx, source, playlistID, nil)
}

func captureSnapshot(ctx context.Context, source PlaylistSource, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSnapshot, error) {
	sendProgress(progress, fetchPlaylistUpdate(1, 1, playlistID))

	playlist, tracks, err := fetchPlaylistTracks(ctx, source, playlistID, progress)
	if err != nil {
		return nil, err
	}

	id := playlist.ID
	if id == "" {
		id = playlistID
	}

	return &models.PlaylistSnapshot{
		ID:         shared.GenerateID(),
		PlaylistID: id,
		Name:       playlist.Name,
		TrackIDs:   lo.Map(tracks, func(t models.Track, _ int) string { return t.ID }),
		CapturedAt: time.Now().UTC(),
	}, nil
}

// Diff returns the track ids only in newIDs as Added and only in oldIDs as Removed.
//
// Order and duplicates are ignored. Both lists are sorted.
func Diff(oldIDs, newIDs []string) models.SnapshotDiff {
	removed, added := lo.Difference(lo.Uniq(oldIDs), lo.Uniq(newIDs))
	slices.Sort(added)
	slices.Sort(removed)
	return models.SnapshotDiff{Added: added, Removed: removed}
}

// TrackResult is the outcome of [SnapshotTracker.Track]. Previous is nil on the first capture.
type TrackResult struct {
	Previous *models.PlaylistSnapshot `json:"previous"`
	Current  *models.PlaylistSnapshot `json:"current"`
	Diff     models.SnapshotDiff      `json:"diff"`
}

// SnapshotTracker captures playlists and compares each capture with the last stored one.
type SnapshotTracker struct {
	source   PlaylistSource
	repo     models.SnapshotRepository
	logger   *log.Logger
	Progress chan<- ProgressUpdate // Optional
}

// NewSnapshotTracker creates a [SnapshotTracker].
func NewSnapshotTracker(source PlaylistSource, repo models.SnapshotRepository, logger *log.Logger) *SnapshotTracker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SnapshotTracker{source: source, repo: repo, logger: logger}
}

// Track captures playlistID, diffs it against the latest stored snapshot and stores the capture.
func (t *SnapshotTracker) Track(ctx context.Context, playlistID string) (*TrackResult, error) {
	if t.repo == nil {
		return nil, fmt.Errorf("%w: snapshot repository not initialized", shared.ErrServiceUnavailable)
	}

	current, err := captureSnapshot(ctx, t.source, playlistID, t.Progress)
	if err != nil {
		return nil, err
	}

	previous, err := t.repo.Latest(ctx, current.PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	result := &TrackResult{Previous: previous, Current: current}
	if previous != nil {
		result.Diff = Diff(previous.TrackIDs, current.TrackIDs)
	} else {
		result.Diff = Diff(nil, current.TrackIDs)
	}
	sendProgress(t.Progress, compareUpdate(result.Diff))

	if err := t.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	sendProgress(t.Progress, savedSnapshotUpdate(current))

	t.logger.Debug("snapshot tracked", "playlist", current.PlaylistID, "tracks", len(current.TrackIDs),
		"added", len(result.Diff.Added), "removed", len(result.Diff.Removed), "first", previous == nil)
	return result, nil
}

// History returns the stored snapshots of a playlist, newest first.
func (t *SnapshotTracker) History(ctx context.Context, playlistID string) ([]*models.PlaylistSnapshot, error) {
	if t.repo == nil {
		return nil, fmt.Errorf("%w: snapshot repository not initialized", shared.ErrServiceUnavailable)
	}
	return t.repo.List(ctx, playlistID)
}

// Compare diffs two stored snapshots by id.
func (t *SnapshotTracker) Compare(ctx context.Context, oldID, newID string) (models.SnapshotDiff, error) {
	if t.repo == nil {
		return models.SnapshotDiff{}, fmt.Errorf("%w: snapshot repository not initialized", shared.ErrServiceUnavailable)
	}

	older, err := t.repo.Get(ctx, oldID)
	if err != nil {
		return models.SnapshotDiff{}, err
	}
	newer, err := t.repo.Get(ctx, newID)
	if err != nil {
		return models.SnapshotDiff{}, err
	}
	return Diff(older.TrackIDs, newer.TrackIDs), nil
}
