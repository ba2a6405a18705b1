// Package models defines the records returned by the Spotify Web API and the types built from them.
//
// The package contains three categories of types:
//
// 1. API records: read-only projections of the Web API's JSON
//   - [Track], [Album], [Artist] : catalog items, also returned by search
//   - [Playlist], [SimplePlaylist] : full and list forms of a playlist
//   - [PlayHistory], [User] : listening history and profile
//   - [Page], [CursorPage] : offset and cursor pagination envelopes
//
// 2. Export rows: [Row] is an insertion-ordered column/value record consumed by the formatter.
//
// 3. Snapshots: [PlaylistSnapshot] captures a playlist's ordered track ids at a point in time,
// and [SnapshotDiff] is the set difference between two captures.
//
// [ItemKind] is the closed set of searchable item types.
package models
