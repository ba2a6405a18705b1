// Package services talks to the Spotify Web API.
//
// # Request Helper
//
// Every call funnels through [Requester.Do], which layers two behaviors over plain HTTP:
//
//   - Response cache: GET responses are stored per request signature (URL plus sorted query
//     parameters) for a fixed TTL. A live entry is returned verbatim without network I/O. Only
//     2xx responses are stored. The cache belongs to the client instance.
//   - Retry: any transport error or non-2xx status is retried with exponential backoff
//     (github.com/sethvargo/go-retry). Once attempts are exhausted the caller receives a
//     [shared.RequestFailedError] wrapping the final failure, usually a [shared.APIError].
//
// # API Surface
//
// [SpotifyClient] exposes typed operations for search, playlists, playback, the saved-tracks
// library, top items, listening history and discovery. Parameters that are unset are omitted
// from the request. Responses decode into the records of package models.
//
// Search results are kept raw and read through [SearchResult] accessors, which address the
// "{kind}s.items" path explicitly and treat a missing key as an empty result.
//
// # Playlist Generation
//
// [SpotifyClient.GeneratePlaylist] is the one composite operation: it may read top tracks and
// recommendations, then creates a playlist and adds tracks in one batch. A failure after the
// playlist exists is reported as [shared.PartialPlaylistError] alongside the created playlist;
// nothing is rolled back.
package services
