package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/shared"
)

// SnapshotRepository implements [models.SnapshotRepository] on SQLite.
type SnapshotRepository struct {
	db *sql.DB
}

var _ models.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts a snapshot and its ordered track ids. An empty ID is generated.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.PlaylistSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if snapshot.ID == "" {
		snapshot.ID = shared.GenerateID()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_snapshots (id, playlist_id, name, captured_at) VALUES (?, ?, ?, ?)`,
			snapshot.ID, snapshot.PlaylistID, snapshot.Name, snapshot.CapturedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO snapshot_tracks (snapshot_id, position, track_id) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare track insert: %w", err)
		}
		defer stmt.Close()

		for i, trackID := range snapshot.TrackIDs {
			if _, err := stmt.ExecContext(ctx, snapshot.ID, i, trackID); err != nil {
				return fmt.Errorf("failed to insert track %d of snapshot: %w", i, err)
			}
		}
		return nil
	})
}

// Get retrieves a snapshot by its ID
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.PlaylistSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, playlist_id, name, captured_at FROM playlist_snapshots WHERE id = ?`, id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadTracks(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Latest returns the most recent snapshot of a playlist, nil when none exists
func (r *SnapshotRepository) Latest(ctx context.Context, playlistID string) (*models.PlaylistSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, playlist_id, name, captured_at
		FROM playlist_snapshots
		WHERE playlist_id = ?
		ORDER BY captured_at DESC, rowid DESC
		LIMIT 1
	`, playlistID)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadTracks(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// List returns a playlist's snapshots, newest first
func (r *SnapshotRepository) List(ctx context.Context, playlistID string) ([]*models.PlaylistSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, playlist_id, name, captured_at
		FROM playlist_snapshots
		WHERE playlist_id = ?
		ORDER BY captured_at DESC, rowid DESC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.PlaylistSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	rows.Close()

	for _, snapshot := range snapshots {
		if err := r.loadTracks(ctx, snapshot); err != nil {
			return nil, err
		}
	}
	return snapshots, nil
}

// Delete removes a snapshot and its tracks
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM playlist_snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	return nil
}

func (r *SnapshotRepository) loadTracks(ctx context.Context, snapshot *models.PlaylistSnapshot) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT track_id FROM snapshot_tracks WHERE snapshot_id = ? ORDER BY position`, snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to query snapshot tracks: %w", err)
	}
	defer rows.Close()

	snapshot.TrackIDs = []string{}
	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return fmt.Errorf("failed to scan snapshot track: %w", err)
		}
		snapshot.TrackIDs = append(snapshot.TrackIDs, trackID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating snapshot tracks: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*models.PlaylistSnapshot, error) {
	var snapshot models.PlaylistSnapshot
	err := s.Scan(&snapshot.ID, &snapshot.PlaylistID, &snapshot.Name, &snapshot.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return &snapshot, nil
}
