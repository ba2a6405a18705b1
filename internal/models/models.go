package models

import (
	"context"
	"fmt"
	"strings"
)

// ItemKind is the type of a catalog item accepted by search.
type ItemKind int

const (
	KindTrack ItemKind = iota
	KindAlbum
	KindArtist
	KindPlaylist
)

// ItemKinds lists every [ItemKind] in declaration order.
var ItemKinds = []ItemKind{KindTrack, KindAlbum, KindArtist, KindPlaylist}

// String returns the API's type name for the kind.
func (k ItemKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindArtist:
		return "artist"
	case KindPlaylist:
		return "playlist"
	default:
		return ""
	}
}

// ResultKey is the top-level key under which search returns items of this kind.
func (k ItemKind) ResultKey() string {
	return k.String() + "s"
}

// ParseKind parses a type name such as "track" or "albums".
func ParseKind(s string) (ItemKind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, k := range ItemKinds {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

// SnapshotRepository persists playlist snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *PlaylistSnapshot) error               // Save inserts a snapshot and its track ids
	Get(ctx context.Context, id string) (*PlaylistSnapshot, error)            // Get retrieves a snapshot by its ID
	Latest(ctx context.Context, playlistID string) (*PlaylistSnapshot, error) // Latest returns the most recent snapshot of a playlist, nil when none exists
	List(ctx context.Context, playlistID string) ([]*PlaylistSnapshot, error) // List returns a playlist's snapshots, newest first
	Delete(ctx context.Context, id string) error                              // Delete removes a snapshot
}
