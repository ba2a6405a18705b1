package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotylog/internal/formatter"
	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	tu "github.com/desertthunder/spotylog/internal/testing"
)

func track(id string) *models.Track {
	return &models.Track{ID: id, Name: "Song " + id, Artists: []models.Artist{{Name: "Artist " + id}}}
}

func items(ids ...string) []models.PlaylistItem {
	out := make([]models.PlaylistItem, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			out = append(out, models.PlaylistItem{})
			continue
		}
		out = append(out, models.PlaylistItem{Track: track(id)})
	}
	return out
}

// mockSource serves playlists whose track ids are split into pages of pageSize.
type mockSource struct {
	mu        sync.Mutex
	playlists map[string][]string
	pageSize  int
	offsets   []int
	err       error
}

func (m *mockSource) page(id string, offset int) models.Page[models.PlaylistItem] {
	ids := m.playlists[id]
	end := min(offset+m.pageSize, len(ids))
	p := models.Page[models.PlaylistItem]{
		Items:  items(ids[offset:end]...),
		Total:  len(ids),
		Limit:  m.pageSize,
		Offset: offset,
	}
	if end < len(ids) {
		p.Next = fmt.Sprintf("https://api.test/v1/playlists/%s/tracks?offset=%d", id, end)
	}
	return p
}

func (m *mockSource) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.playlists[id]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return &models.Playlist{ID: id, Name: "Playlist " + id, Tracks: m.page(id, 0)}, nil
}

func (m *mockSource) PlaylistItems(ctx context.Context, id string, limit, offset int) (*models.Page[models.PlaylistItem], error) {
	m.mu.Lock()
	m.offsets = append(m.offsets, offset)
	m.mu.Unlock()
	p := m.page(id, offset)
	return &p, nil
}

// memoryRepo is an in-memory [models.SnapshotRepository].
type memoryRepo struct {
	snapshots []*models.PlaylistSnapshot
	latestErr error
}

func (r *memoryRepo) Save(ctx context.Context, s *models.PlaylistSnapshot) error {
	r.snapshots = append(r.snapshots, s)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*models.PlaylistSnapshot, error) {
	for _, s := range r.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("snapshot not found")
}

func (r *memoryRepo) Latest(ctx context.Context, playlistID string) (*models.PlaylistSnapshot, error) {
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].PlaylistID == playlistID {
			return r.snapshots[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) List(ctx context.Context, playlistID string) ([]*models.PlaylistSnapshot, error) {
	var out []*models.PlaylistSnapshot
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].PlaylistID == playlistID {
			out = append(out, r.snapshots[i])
		}
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.snapshots = slices.DeleteFunc(r.snapshots, func(s *models.PlaylistSnapshot) bool { return s.ID == id })
	return nil
}

func TestCaptureSnapshot(t *testing.T) {
	t.Run("Follows Pagination", func(t *testing.T) {
		source := &mockSource{
			playlists: map[string][]string{"p1": {"t1", "", "t2", "t3", "t4"}},
			pageSize:  2,
		}

		snapshot, err := CaptureSnapshot(context.Background(), source, "p1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"t1", "t2", "t3", "t4"}
		if !slices.Equal(snapshot.TrackIDs, want) {
			t.Errorf("TrackIDs = %v, want %v", snapshot.TrackIDs, want)
		}
		if !slices.Equal(source.offsets, []int{2, 4}) {
			t.Errorf("unexpected page offsets %v", source.offsets)
		}
		if snapshot.PlaylistID != "p1" || snapshot.Name != "Playlist p1" {
			t.Errorf("unexpected snapshot identity %+v", snapshot)
		}
		if snapshot.ID == "" || snapshot.CapturedAt.IsZero() {
			t.Error("expected id and capture time to be set")
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]string{"p1": {}}, pageSize: 100}

		snapshot, err := CaptureSnapshot(context.Background(), source, "p1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snapshot.TrackIDs) != 0 {
			t.Errorf("expected no tracks, got %v", snapshot.TrackIDs)
		}
	})

	t.Run("Propagates Errors", func(t *testing.T) {
		source := &mockSource{err: &shared.APIError{Status: 404, Body: "missing"}}

		_, err := CaptureSnapshot(context.Background(), source, "p1")
		var apiErr *shared.APIError
		if !errors.As(err, &apiErr) {
			t.Errorf("expected APIError, got %v", err)
		}
	})

	t.Run("Nil Source", func(t *testing.T) {
		_, err := CaptureSnapshot(context.Background(), nil, "p1")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestDiff(t *testing.T) {
	tc := []struct {
		name    string
		old     []string
		new     []string
		added   []string
		removed []string
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, []string{}, []string{}},
		{"reordered", []string{"a", "b", "c"}, []string{"c", "a", "b"}, []string{}, []string{}},
		{"added and removed", []string{"a", "b", "c"}, []string{"b", "c", "d", "e"}, []string{"d", "e"}, []string{"a"}},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"b", "c", "c"}, []string{"c"}, []string{"a"}},
		{"sorted output", []string{}, []string{"z", "m", "a"}, []string{"a", "m", "z"}, []string{}},
		{"from nothing", nil, []string{"a"}, []string{"a"}, []string{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			d := Diff(tt.old, tt.new)
			if !slices.Equal(d.Added, tt.added) {
				t.Errorf("Added = %v, want %v", d.Added, tt.added)
			}
			if !slices.Equal(d.Removed, tt.removed) {
				t.Errorf("Removed = %v, want %v", d.Removed, tt.removed)
			}
			for _, id := range d.Added {
				if slices.Contains(d.Removed, id) {
					t.Errorf("%s is both added and removed", id)
				}
			}
		})
	}

	t.Run("Self Diff Is Empty", func(t *testing.T) {
		ids := []string{"x", "y", "x"}
		if d := Diff(ids, ids); !d.Empty() {
			t.Errorf("expected empty diff, got %+v", d)
		}
	})
}

func TestSnapshotTracker(t *testing.T) {
	logger := log.New(io.Discard)

	t.Run("First And Subsequent Captures", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]string{"p1": {"a", "b"}}, pageSize: 100}
		repo := &memoryRepo{}
		tracker := NewSnapshotTracker(source, repo, logger)
		progress := make(chan ProgressUpdate, 20)
		tracker.Progress = progress

		first, err := tracker.Track(context.Background(), "p1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Previous != nil {
			t.Error("first capture should have no previous snapshot")
		}
		if !slices.Equal(first.Diff.Added, []string{"a", "b"}) {
			t.Errorf("first diff = %+v", first.Diff)
		}

		source.playlists["p1"] = []string{"b", "c"}
		second, err := tracker.Track(context.Background(), "p1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if second.Previous == nil || second.Previous.ID != first.Current.ID {
			t.Fatalf("expected previous to be the first capture, got %+v", second.Previous)
		}
		if !slices.Equal(second.Diff.Added, []string{"c"}) || !slices.Equal(second.Diff.Removed, []string{"a"}) {
			t.Errorf("second diff = %+v", second.Diff)
		}
		if len(repo.snapshots) != 2 {
			t.Errorf("expected 2 stored snapshots, got %d", len(repo.snapshots))
		}

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if !slices.Contains(phases, Compare) || !slices.Contains(phases, SaveSnapshot) {
			t.Errorf("missing progress phases, got %v", phases)
		}

		history, err := tracker.History(context.Background(), "p1")
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 2 || history[0].ID != second.Current.ID {
			t.Errorf("history should be newest first, got %d entries", len(history))
		}

		d, err := tracker.Compare(context.Background(), first.Current.ID, second.Current.ID)
		if err != nil {
			t.Fatalf("Compare failed: %v", err)
		}
		if !slices.Equal(d.Added, []string{"c"}) {
			t.Errorf("Compare added = %v", d.Added)
		}
	})

	t.Run("Repository Error", func(t *testing.T) {
		source := &mockSource{playlists: map[string][]string{"p1": {"a"}}, pageSize: 100}
		repo := &memoryRepo{latestErr: errors.New("database locked")}
		tracker := NewSnapshotTracker(source, repo, logger)

		if _, err := tracker.Track(context.Background(), "p1"); err == nil {
			t.Fatal("expected error")
		}
		if len(repo.snapshots) != 0 {
			t.Error("nothing should be saved when the previous snapshot cannot be loaded")
		}
	})

	t.Run("No Repository", func(t *testing.T) {
		tracker := NewSnapshotTracker(&mockSource{}, nil, logger)
		if _, err := tracker.Track(context.Background(), "p1"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

type mockSearcher struct {
	mu      sync.Mutex
	calls   []string
	delay   time.Duration
	failing map[string]error
}

func (m *mockSearcher) Search(ctx context.Context, query string, kind models.ItemKind, limit int) (*services.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err, ok := m.failing[query]; ok {
		return nil, err
	}
	raw := fmt.Sprintf(`{"%s":{"total":1,"items":[{"name":%q}]}}`, kind.ResultKey(), query)
	return &services.SearchResult{Kind: kind, Query: query, Raw: json.RawMessage(raw)}, nil
}

func TestSearchAll(t *testing.T) {
	t.Run("Outcomes In Input Order", func(t *testing.T) {
		searcher := &mockSearcher{
			delay:   5 * time.Millisecond,
			failing: map[string]error{"broken": &shared.APIError{Status: 500}},
		}
		queries := []string{"Believer", "broken", "Thunder", "Radioactive"}

		outcomes, err := SearchAll(context.Background(), searcher, queries, models.KindTrack, 5, SearchAllOpts{Workers: 3, RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(outcomes) != len(queries) {
			t.Fatalf("expected %d outcomes, got %d", len(queries), len(outcomes))
		}

		for i, o := range outcomes {
			if o.Query != queries[i] {
				t.Errorf("outcome %d query = %q, want %q", i, o.Query, queries[i])
			}
			if o.Query == "broken" {
				if o.Err == nil || o.Result != nil {
					t.Errorf("expected failure for broken query, got %+v", o)
				}
				continue
			}
			if o.Err != nil {
				t.Errorf("unexpected error for %s: %v", o.Query, o.Err)
			}
			if o.Result.Len() != 1 {
				t.Errorf("expected 1 item for %s, got %d", o.Query, o.Result.Len())
			}
		}
		if len(searcher.calls) != len(queries) {
			t.Errorf("a failing query must not cancel the others, got %d calls", len(searcher.calls))
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcomes, err := SearchAll(ctx, &mockSearcher{}, []string{"a", "b"}, models.KindAlbum, 5, SearchAllOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for _, o := range outcomes {
			if o.Err == nil {
				t.Errorf("expected error on %s", o.Query)
			}
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		o := SearchAllOpts{Workers: 50}.withDefaults()
		if o.Workers != maxWorkers {
			t.Errorf("expected workers capped at %d, got %d", maxWorkers, o.Workers)
		}
		if o.RateLimit != defaultRateLimit {
			t.Errorf("expected default rate limit, got %v", o.RateLimit)
		}
	})
}

func TestExportPlaylists(t *testing.T) {
	source := &mockSource{
		playlists: map[string][]string{
			"p1": {"a", "b", "c"},
			"p2": {"d"},
		},
		pageSize: 2,
	}
	dir := t.TempDir()
	progress := make(chan ProgressUpdate, 20)

	result, err := ExportPlaylists(context.Background(), progress, source, []string{"p1", "missing", "p2"}, BulkExportOpts{
		Format:    formatter.Delimited,
		OutputDir: dir,
		Workers:   2,
		RateLimit: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalPlaylists != 3 || result.SuccessfulExports != 2 || result.FailedExports != 1 {
		t.Errorf("unexpected counts %+v", result)
	}

	for _, res := range result.Results {
		if !res.Success {
			if res.PlaylistID != "missing" || !errors.Is(res.Error, shared.ErrPlaylistNotFound) {
				t.Errorf("unexpected failure %+v", res)
			}
			continue
		}
		tu.AssertFileExists(t, res.File)
		rows, err := formatter.ReadRows(res.File, formatter.Delimited)
		if err != nil {
			t.Fatalf("ReadRows failed: %v", err)
		}
		if len(rows) != res.Tracks {
			t.Errorf("%s: expected %d rows, got %d", res.PlaylistID, res.Tracks, len(rows))
		}
	}

	if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
		t.Errorf("unexpected manifest path %s", result.ManifestPath)
	}
	manifest := tu.MustReadFile(t, result.ManifestPath)
	if !strings.Contains(manifest, `"successful_exports": 2`) || !strings.Contains(manifest, `"format": "csv"`) {
		t.Errorf("unexpected manifest %s", manifest)
	}

	t.Run("Repeated IDs Export Once", func(t *testing.T) {
		result, err := ExportPlaylists(context.Background(), nil, source, []string{"p1", "p2", "p1", "p1"}, BulkExportOpts{
			Format:    formatter.Structured,
			OutputDir: t.TempDir(),
			Workers:   4,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TotalPlaylists != 2 || result.SuccessfulExports != 2 || len(result.Results) != 2 {
			t.Errorf("expected two distinct exports, got %+v", result)
		}
	})

	t.Run("Nil Source", func(t *testing.T) {
		_, err := ExportPlaylists(context.Background(), nil, nil, []string{"p1"}, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestPlaylistTracks(t *testing.T) {
	source := &mockSource{playlists: map[string][]string{"p1": {"a", "", "b"}}, pageSize: 2}

	playlist, tracks, err := PlaylistTracks(context.Background(), source, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if playlist.Name != "Playlist p1" {
		t.Errorf("unexpected playlist %s", playlist.Name)
	}
	if len(tracks) != 2 || tracks[1].Name != "Song b" {
		t.Errorf("unexpected tracks %+v", tracks)
	}
}
