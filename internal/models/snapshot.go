package models

import (
	"fmt"
	"time"
)

// PlaylistSnapshot is the ordered list of track ids of a playlist at capture time.
type PlaylistSnapshot struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	Name       string    `json:"name"`
	TrackIDs   []string  `json:"track_ids"`
	CapturedAt time.Time `json:"captured_at"`
}

// Validate checks the snapshot can be persisted.
func (s *PlaylistSnapshot) Validate() error {
	if s.PlaylistID == "" {
		return fmt.Errorf("snapshot has no playlist id")
	}
	if s.CapturedAt.IsZero() {
		return fmt.Errorf("snapshot has no capture time")
	}
	return nil
}

// SnapshotDiff lists track ids present in only one of two snapshots.
//
// Both lists are duplicate-free and sorted.
type SnapshotDiff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Empty reports whether the snapshots contained the same set of tracks.
func (d SnapshotDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}
