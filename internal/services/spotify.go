// Spotify Web API operations
//
// Response types are defined in package models, based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/samber/lo"
)

// TimeRange selects the window used for top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // ~4 weeks
	MediumTerm TimeRange = "medium_term" // ~6 months
	LongTerm   TimeRange = "long_term"   // ~1 year
)

// ParseTimeRange accepts short, medium or long with or without the _term suffix.
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "_term") {
	case "", "medium":
		return MediumTerm, nil
	case "short":
		return ShortTerm, nil
	case "long":
		return LongTerm, nil
	default:
		return "", fmt.Errorf("%w: time range %q", shared.ErrInvalidArgument, s)
	}
}

// SpotifyClient implements the Spotify Web API surface on top of a [Requester].
type SpotifyClient struct {
	req *Requester
}

// NewSpotifyClient creates a client authenticated with opts.Token.
func NewSpotifyClient(opts ClientOpts) (*SpotifyClient, error) {
	req, err := NewRequester(opts)
	if err != nil {
		return nil, err
	}
	return &SpotifyClient{req: req}, nil
}

// Requester exposes the underlying request helper for endpoints without a typed wrapper.
func (c *SpotifyClient) Requester() *Requester {
	return c.req
}

func (c *SpotifyClient) call(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	data, err := c.req.Do(ctx, method, endpoint, params, body)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Search queries the catalog for items of kind. Items are read through the [SearchResult] accessors.
func (c *SpotifyClient) Search(ctx context.Context, query string, kind models.ItemKind, limit int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind.String())
	params.Set("limit", strconv.Itoa(limit))

	data, err := c.req.Do(ctx, http.MethodGet, "search", params, nil)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Kind: kind, Query: query, Raw: data}, nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (c *SpotifyClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID.
func (c *SpotifyClient) Track(ctx context.Context, trackID string) (*models.Track, error) {
	var track models.Track
	if err := c.call(ctx, http.MethodGet, "tracks/"+url.PathEscape(trackID), nil, nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// UserPlaylists retrieves a page of the current user's playlists.
func (c *SpotifyClient) UserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.SimplePlaylist], error) {
	params := pageParams(limit, offset)

	var page models.Page[models.SimplePlaylist]
	if err := c.call(ctx, http.MethodGet, "me/playlists", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AllUserPlaylists follows pagination until every playlist of the current user is collected.
func (c *SpotifyClient) AllUserPlaylists(ctx context.Context) ([]models.SimplePlaylist, error) {
	var all []models.SimplePlaylist
	limit, offset := 50, 0

	for {
		page, err := c.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.HasNext() || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return all, nil
}

// Playlist retrieves a playlist by ID, including its first page of items.
func (c *SpotifyClient) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := c.call(ctx, http.MethodGet, "playlists/"+url.PathEscape(playlistID), nil, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistItems retrieves a page of a playlist's items.
func (c *SpotifyClient) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistItem], error) {
	params := pageParams(limit, offset)

	var page models.Page[models.PlaylistItem]
	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	if err := c.call(ctx, http.MethodGet, endpoint, params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePlaylist creates an empty playlist owned by userID.
func (c *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist models.Playlist
	endpoint := fmt.Sprintf("users/%s/playlists", url.PathEscape(userID))
	if err := c.call(ctx, http.MethodPost, endpoint, nil, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracksToPlaylist appends uris to a playlist in one request and returns the new snapshot id.
func (c *SpotifyClient) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	var resp models.SnapshotResponse
	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	if err := c.call(ctx, http.MethodPost, endpoint, nil, map[string]any{"uris": uris}, &resp); err != nil {
		return "", err
	}
	return resp.SnapshotID, nil
}

// RemoveTracksFromPlaylist removes every occurrence of uris from a playlist.
func (c *SpotifyClient) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, uris []string) (string, error) {
	tracks := lo.Map(uris, func(uri string, _ int) map[string]string {
		return map[string]string{"uri": uri}
	})

	var resp models.SnapshotResponse
	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	if err := c.call(ctx, http.MethodDelete, endpoint, nil, map[string]any{"tracks": tracks}, &resp); err != nil {
		return "", err
	}
	return resp.SnapshotID, nil
}

// ReorderPlaylistTracks moves rangeLength items starting at rangeStart to before insertBefore.
func (c *SpotifyClient) ReorderPlaylistTracks(ctx context.Context, playlistID string, rangeStart, insertBefore, rangeLength int) (string, error) {
	if rangeLength <= 0 {
		rangeLength = 1
	}
	body := map[string]int{
		"range_start":   rangeStart,
		"insert_before": insertBefore,
		"range_length":  rangeLength,
	}

	var resp models.SnapshotResponse
	endpoint := fmt.Sprintf("playlists/%s/tracks", url.PathEscape(playlistID))
	if err := c.call(ctx, http.MethodPut, endpoint, nil, body, &resp); err != nil {
		return "", err
	}
	return resp.SnapshotID, nil
}

// PlaylistDetails holds the playlist fields to change. Nil or empty fields are left untouched.
type PlaylistDetails struct {
	Name        string
	Description *string
	Public      *bool
}

// UpdatePlaylistDetails changes a playlist's name, description or visibility.
func (c *SpotifyClient) UpdatePlaylistDetails(ctx context.Context, playlistID string, details PlaylistDetails) error {
	body := map[string]any{}
	if details.Name != "" {
		body["name"] = details.Name
	}
	if details.Description != nil {
		body["description"] = *details.Description
	}
	if details.Public != nil {
		body["public"] = *details.Public
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: no playlist details to update", shared.ErrMissingArgument)
	}

	return c.call(ctx, http.MethodPut, "playlists/"+url.PathEscape(playlistID), nil, body, nil)
}

// GeneratePlaylistOpts configures [SpotifyClient.GeneratePlaylist].
//
// With no TrackIDs, tracks are recommended from the user's top SeedCount tracks.
// An empty UserID resolves to the current user.
type GeneratePlaylistOpts struct {
	UserID      string
	Name        string
	Description string
	Public      bool
	TrackIDs    []string
	SeedCount   int
	Limit       int
}

// GeneratePlaylist creates a playlist and fills it in one batch add.
//
// If the add step fails the created playlist is returned together with a [shared.PartialPlaylistError].
// The playlist is not deleted.
func (c *SpotifyClient) GeneratePlaylist(ctx context.Context, opts GeneratePlaylistOpts) (*models.Playlist, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	if opts.SeedCount <= 0 {
		opts.SeedCount = DefaultGenerateSeeds
	}

	trackIDs := opts.TrackIDs
	if len(trackIDs) == 0 {
		top, err := c.TopTracks(ctx, MediumTerm, opts.SeedCount)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch seed tracks: %w", err)
		}

		seeds := trackIDsOf(top.Items)
		if len(seeds) == 0 {
			return nil, shared.ErrNoSeedTracks
		}

		recommended, err := c.Recommendations(ctx, Seeds{Tracks: seeds}, opts.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
		}
		trackIDs = trackIDsOf(recommended)
	}

	userID := opts.UserID
	if userID == "" {
		user, err := c.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		userID = user.ID
	}

	playlist, err := c.CreatePlaylist(ctx, userID, opts.Name, opts.Description, opts.Public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if len(trackIDs) == 0 {
		return playlist, nil
	}

	snapshotID, err := c.AddTracksToPlaylist(ctx, playlist.ID, TrackURIs(trackIDs))
	if err != nil {
		return playlist, &shared.PartialPlaylistError{PlaylistID: playlist.ID, Err: err}
	}
	if snapshotID != "" {
		playlist.SnapshotID = snapshotID
	}
	playlist.Tracks.Total = len(trackIDs)
	return playlist, nil
}

// PlaybackOpts selects what [SpotifyClient.StartPlayback] plays and where. Empty fields are omitted.
type PlaybackOpts struct {
	DeviceID   string
	ContextURI string
	URIs       []string
}

// StartPlayback starts or resumes playback.
func (c *SpotifyClient) StartPlayback(ctx context.Context, opts PlaybackOpts) error {
	var body map[string]any
	if opts.ContextURI != "" || len(opts.URIs) > 0 {
		body = map[string]any{}
		if opts.ContextURI != "" {
			body["context_uri"] = opts.ContextURI
		}
		if len(opts.URIs) > 0 {
			body["uris"] = opts.URIs
		}
	}

	return c.call(ctx, http.MethodPut, "me/player/play", deviceParams(opts.DeviceID), body, nil)
}

// PausePlayback pauses playback on the given or active device.
func (c *SpotifyClient) PausePlayback(ctx context.Context, deviceID string) error {
	return c.call(ctx, http.MethodPut, "me/player/pause", deviceParams(deviceID), nil, nil)
}

// SkipNext skips to the next track.
func (c *SpotifyClient) SkipNext(ctx context.Context, deviceID string) error {
	return c.call(ctx, http.MethodPost, "me/player/next", deviceParams(deviceID), nil, nil)
}

// SkipPrevious skips to the previous track.
func (c *SpotifyClient) SkipPrevious(ctx context.Context, deviceID string) error {
	return c.call(ctx, http.MethodPost, "me/player/previous", deviceParams(deviceID), nil, nil)
}

// SetVolume sets the playback volume in percent.
func (c *SpotifyClient) SetVolume(ctx context.Context, percent int, deviceID string) error {
	params := deviceParams(deviceID)
	params.Set("volume_percent", strconv.Itoa(percent))
	return c.call(ctx, http.MethodPut, "me/player/volume", params, nil, nil)
}

// SaveTracks adds tracks to the user's library.
func (c *SpotifyClient) SaveTracks(ctx context.Context, ids []string) error {
	return c.call(ctx, http.MethodPut, "me/tracks", nil, map[string]any{"ids": ids}, nil)
}

// RemoveTracks removes tracks from the user's library.
func (c *SpotifyClient) RemoveTracks(ctx context.Context, ids []string) error {
	return c.call(ctx, http.MethodDelete, "me/tracks", nil, map[string]any{"ids": ids}, nil)
}

// CheckSavedTracks reports, per id, whether the track is in the user's library.
func (c *SpotifyClient) CheckSavedTracks(ctx context.Context, ids []string) ([]bool, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var saved []bool
	if err := c.call(ctx, http.MethodGet, "me/tracks/contains", params, nil, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// TopTracks retrieves the user's most played tracks over timeRange.
func (c *SpotifyClient) TopTracks(ctx context.Context, timeRange TimeRange, limit int) (*models.Page[models.Track], error) {
	var page models.Page[models.Track]
	if err := c.call(ctx, http.MethodGet, "me/top/tracks", topParams(timeRange, limit), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// TopArtists retrieves the user's most played artists over timeRange.
func (c *SpotifyClient) TopArtists(ctx context.Context, timeRange TimeRange, limit int) (*models.Page[models.Artist], error) {
	var page models.Page[models.Artist]
	if err := c.call(ctx, http.MethodGet, "me/top/artists", topParams(timeRange, limit), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RecentlyPlayedOpts bounds the recently played query. After and Before are unix milliseconds; zero omits them.
type RecentlyPlayedOpts struct {
	After  int64
	Before int64
	Limit  int
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (c *SpotifyClient) RecentlyPlayed(ctx context.Context, opts RecentlyPlayedOpts) (*models.CursorPage[models.PlayHistory], error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecentLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(opts.Limit))
	if opts.After > 0 {
		params.Set("after", strconv.FormatInt(opts.After, 10))
	}
	if opts.Before > 0 {
		params.Set("before", strconv.FormatInt(opts.Before, 10))
	}

	var page models.CursorPage[models.PlayHistory]
	if err := c.call(ctx, http.MethodGet, "me/player/recently-played", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NewReleases retrieves newly released albums.
func (c *SpotifyClient) NewReleases(ctx context.Context, limit int) (*models.Page[models.Album], error) {
	var resp struct {
		Albums models.Page[models.Album] `json:"albums"`
	}
	if err := c.call(ctx, http.MethodGet, "browse/new-releases", limitParams(limit), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Albums, nil
}

// FeaturedPlaylists retrieves editorially featured playlists.
func (c *SpotifyClient) FeaturedPlaylists(ctx context.Context, limit int) (*models.Page[models.SimplePlaylist], error) {
	var resp struct {
		Message   string                             `json:"message"`
		Playlists models.Page[models.SimplePlaylist] `json:"playlists"`
	}
	if err := c.call(ctx, http.MethodGet, "browse/featured-playlists", limitParams(limit), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Playlists, nil
}

// Seeds are the inputs for recommendations. The API requires at least one seed, which is not checked here.
type Seeds struct {
	Tracks  []string
	Artists []string
	Genres  []string
}

// Recommendations retrieves tracks recommended from seeds.
func (c *SpotifyClient) Recommendations(ctx context.Context, seeds Seeds, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = DefaultRecommendations
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	params.Set("seed_artists", strings.Join(seeds.Artists, ","))
	params.Set("seed_genres", strings.Join(seeds.Genres, ","))

	var resp struct {
		Tracks []models.Track `json:"tracks"`
	}
	if err := c.call(ctx, http.MethodGet, "recommendations", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

// TrackURIs converts track ids to spotify:track URIs, leaving existing URIs untouched.
func TrackURIs(ids []string) []string {
	return lo.Map(ids, func(id string, _ int) string {
		if strings.HasPrefix(id, "spotify:") {
			return id
		}
		return "spotify:track:" + id
	})
}

func trackIDsOf(tracks []models.Track) []string {
	ids := lo.Map(tracks, func(t models.Track, _ int) string { return t.ID })
	return lo.Compact(ids)
}

func deviceParams(deviceID string) url.Values {
	params := url.Values{}
	if deviceID != "" {
		params.Set("device_id", deviceID)
	}
	return params
}

func limitParams(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	return params
}

func pageParams(limit, offset int) url.Values {
	params := limitParams(limit)
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	return params
}

func topParams(timeRange TimeRange, limit int) url.Values {
	if timeRange == "" {
		timeRange = MediumTerm
	}
	params := limitParams(limit)
	params.Set("time_range", string(timeRange))
	return params
}
