package models

import (
	"fmt"
	"strings"
)

// Image is an artwork reference.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Followers is the follower summary attached to users, artists and playlists.
type Followers struct {
	Total int `json:"total"`
}

// ExternalIDs holds cross-catalog identifiers.
type ExternalIDs struct {
	ISRC string `json:"isrc"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   Followers `json:"followers"`
	Images      []Image   `json:"images"`
	URI         string    `json:"uri"`
}

// Artist represents a Spotify artist. Simplified artist objects leave Genres and Popularity empty.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genres     []string  `json:"genres"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
	Images     []Image   `json:"images"`
	URI        string    `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []Artist    `json:"artists"`
	Album       Album       `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	ExternalIDs ExternalIDs `json:"external_ids"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
}

// ArtistNames joins the names of the track's artists with ", ".
func (t Track) ArtistNames() string {
	return JoinArtists(t.Artists)
}

// String renders "Name by Artist, Artist".
func (t Track) String() string {
	return fmt.Sprintf("%s by %s", t.Name, t.ArtistNames())
}

// JoinArtists joins artist names with ", ".
func JoinArtists(artists []Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Owner is the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PlaylistItem is an entry of a playlist. Track is nil for removed or local items the API cannot resolve.
type PlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// Page is the offset pagination envelope used by most list endpoints.
type Page[T any] struct {
	Href     string `json:"href"`
	Items    []T    `json:"items"`
	Total    int    `json:"total"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool {
	return p.Next != ""
}

// Cursors bounds a cursor page.
type Cursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

// CursorPage is the cursor pagination envelope used by recently played.
type CursorPage[T any] struct {
	Items   []T     `json:"items"`
	Limit   int     `json:"limit"`
	Next    string  `json:"next"`
	Cursors Cursors `json:"cursors"`
}

// Playlist represents a full Spotify playlist including its first page of items.
type Playlist struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Owner         Owner              `json:"owner"`
	Public        bool               `json:"public"`
	Collaborative bool               `json:"collaborative"`
	SnapshotID    string             `json:"snapshot_id"`
	Followers     Followers          `json:"followers"`
	Tracks        Page[PlaylistItem] `json:"tracks"`
	Images        []Image            `json:"images"`
	URI           string             `json:"uri"`
}

// String renders "Name - N tracks".
func (p Playlist) String() string {
	return fmt.Sprintf("%s - %d tracks", p.Name, p.Tracks.Total)
}

// TrackCount is the track summary on simplified playlists.
type TrackCount struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// SimplePlaylist represents a simplified playlist object as returned by list and search endpoints.
type SimplePlaylist struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Owner         Owner      `json:"owner"`
	Public        bool       `json:"public"`
	Collaborative bool       `json:"collaborative"`
	SnapshotID    string     `json:"snapshot_id"`
	Tracks        TrackCount `json:"tracks"`
	Images        []Image    `json:"images"`
	URI           string     `json:"uri"`
}

// String renders "Name - N tracks".
func (p SimplePlaylist) String() string {
	return fmt.Sprintf("%s - %d tracks", p.Name, p.Tracks.Total)
}

// PlaybackContext is the album, playlist or artist a track was played from.
type PlaybackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// PlayHistory is one entry of the recently played list.
type PlayHistory struct {
	Track    Track            `json:"track"`
	PlayedAt string           `json:"played_at"`
	Context  *PlaybackContext `json:"context"`
}

// SnapshotResponse is returned by playlist mutations.
type SnapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}
