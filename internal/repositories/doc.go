// Package repositories implements SQLite persistence for playlist snapshots.
//
// [SnapshotRepository] implements [models.SnapshotRepository]. A snapshot row holds the
// playlist identity and capture time; its track ids live in snapshot_tracks keyed by
// position so the captured order survives a round trip. Deleting a snapshot cascades to
// its tracks.
//
// The schema is owned by the goose migrations applied through [shared.OpenDatabase].
package repositories
