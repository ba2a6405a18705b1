package services

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/tidwall/gjson"
)

// SearchResult is the raw response of a search, keyed by "{kind}s".
type SearchResult struct {
	Kind  models.ItemKind
	Query string
	Raw   json.RawMessage
}

func (r *SearchResult) items(kind models.ItemKind) gjson.Result {
	return gjson.GetBytes(r.Raw, kind.ResultKey()+".items")
}

// Total is the number of matches reported for the searched kind, 0 when the key is absent.
func (r *SearchResult) Total() int {
	return int(gjson.GetBytes(r.Raw, r.Kind.ResultKey()+".total").Int())
}

// Len is the number of items returned for the searched kind.
func (r *SearchResult) Len() int {
	n := 0
	r.items(r.Kind).ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.Null {
			n++
		}
		return true
	})
	return n
}

// Tracks decodes the tracks.items array. A missing key yields no tracks.
func (r *SearchResult) Tracks() ([]models.Track, error) {
	return decodeItems[models.Track](r.items(models.KindTrack))
}

// Albums decodes the albums.items array. A missing key yields no albums.
func (r *SearchResult) Albums() ([]models.Album, error) {
	return decodeItems[models.Album](r.items(models.KindAlbum))
}

// Artists decodes the artists.items array. A missing key yields no artists.
func (r *SearchResult) Artists() ([]models.Artist, error) {
	return decodeItems[models.Artist](r.items(models.KindArtist))
}

// Playlists decodes the playlists.items array. A missing key yields no playlists.
func (r *SearchResult) Playlists() ([]models.SimplePlaylist, error) {
	return decodeItems[models.SimplePlaylist](r.items(models.KindPlaylist))
}

// decodeItems unmarshals each non-null element of an items array.
func decodeItems[T any](res gjson.Result) ([]T, error) {
	if !res.Exists() || !res.IsArray() {
		return []T{}, nil
	}

	out := make([]T, 0, len(res.Array()))
	for i, v := range res.Array() {
		if v.Type == gjson.Null {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(v.Raw), &item); err != nil {
			return nil, fmt.Errorf("failed to decode search item %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}
