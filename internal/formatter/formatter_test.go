package formatter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotylog/internal/models"
	"github.com/desertthunder/spotylog/internal/services"
	"github.com/desertthunder/spotylog/internal/shared"
	tu "github.com/desertthunder/spotylog/internal/testing"
)

func believer() models.Track {
	return models.Track{
		ID:         "0pqnGHJpmpxLKifKRmU6WP",
		Name:       "Believer",
		Artists:    []models.Artist{{Name: "Imagine Dragons"}},
		Album:      models.Album{Name: "Evolve"},
		DurationMS: 204346,
		Popularity: 88,
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"excel", Spreadsheet},
		{"XLSX", Spreadsheet},
		{"spreadsheet", Spreadsheet},
		{"csv", Delimited},
		{" json ", Structured},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		if _, err := ParseFormat("markdown"); !errors.Is(err, shared.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})
}

func TestDefaultPath(t *testing.T) {
	tc := map[string]Format{
		"search_results.xlsx":  Spreadsheet,
		"user_playlists.csv":   Delimited,
		"recently_played.json": Structured,
	}
	for want, format := range tc {
		base := strings.TrimSuffix(want, filepath.Ext(want))
		if got := DefaultPath(base, format); got != want {
			t.Errorf("DefaultPath(%q, %v) = %q, want %q", base, format, got, want)
		}
	}
}

func TestRows(t *testing.T) {
	t.Run("Track", func(t *testing.T) {
		row := TrackRow(believer())
		want := []string{"Name", "Artists", "Album", "Duration (ms)", "Popularity"}
		if got := row.Columns(); strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("columns = %v, want %v", got, want)
		}
		if v, _ := row.Get("Artists"); v != "Imagine Dragons" {
			t.Errorf("Artists = %v", v)
		}
		if v, _ := row.Get("Duration (ms)"); v != 204346 {
			t.Errorf("Duration = %v", v)
		}
	})

	t.Run("Album", func(t *testing.T) {
		row := AlbumRow(models.Album{
			Name:        "Evolve",
			Artists:     []models.Artist{{Name: "Imagine Dragons"}, {Name: "Guest"}},
			ReleaseDate: "2017-06-23",
			TotalTracks: 11,
		})
		if v, _ := row.Get("Artists"); v != "Imagine Dragons, Guest" {
			t.Errorf("Artists = %v", v)
		}
		if row.Len() != 4 {
			t.Errorf("expected 4 columns, got %d", row.Len())
		}
	})

	t.Run("Artist", func(t *testing.T) {
		row := ArtistRow(models.Artist{Name: "Imagine Dragons", Genres: []string{"modern rock", "pop"}, Popularity: 85})
		if v, _ := row.Get("Genres"); v != "modern rock, pop" {
			t.Errorf("Genres = %v", v)
		}
	})

	t.Run("Playlist", func(t *testing.T) {
		row := PlaylistRow(models.SimplePlaylist{
			Name:   "Road Trip",
			Owner:  models.Owner{DisplayName: "owner"},
			Tracks: models.TrackCount{Total: 2},
			Public: true,
		})
		want := []string{"Name", "Description", "Owner", "Tracks", "Public"}
		if got := row.Columns(); strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("columns = %v, want %v", got, want)
		}
	})

	t.Run("PlayHistory", func(t *testing.T) {
		rows := PlayHistoryRows([]models.PlayHistory{{Track: believer(), PlayedAt: "2024-01-01T10:00:00Z"}})
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		if v, _ := rows[0].Get("Played At"); v != "2024-01-01T10:00:00Z" {
			t.Errorf("Played At = %v", v)
		}
	})
}

func TestSearchRows(t *testing.T) {
	result := &services.SearchResult{
		Kind: models.KindTrack,
		Raw: []byte(`{"tracks":{"total":1,"items":[{"name":"Believer","artists":[{"name":"Imagine Dragons"}],
			"album":{"name":"Evolve"},"duration_ms":204346,"popularity":88}]}}`),
	}

	rows, err := SearchRows(models.KindTrack, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if v, _ := rows[0].Get("Album"); v != "Evolve" {
		t.Errorf("Album = %v", v)
	}

	t.Run("Missing Key", func(t *testing.T) {
		rows, err := SearchRows(models.KindPlaylist, result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("expected no rows, got %d", len(rows))
		}
	})
}

func TestExport(t *testing.T) {
	for _, format := range []Format{Spreadsheet, Delimited, Structured} {
		t.Run(format.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultPath("search_results", format))

			written, err := Export(TrackRows([]models.Track{believer()}), path, format)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if written != path {
				t.Errorf("expected %s, got %s", path, written)
			}
			tu.AssertFileExists(t, path)

			rows, err := ReadRows(path, format)
			if err != nil {
				t.Fatalf("ReadRows failed: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}

			want := map[string]string{
				"Name":          "Believer",
				"Artists":       "Imagine Dragons",
				"Album":         "Evolve",
				"Duration (ms)": "204346",
				"Popularity":    "88",
			}
			for k, v := range want {
				if rows[0][k] != v {
					t.Errorf("%s = %q, want %q", k, rows[0][k], v)
				}
			}
		})
	}

	t.Run("Missing Columns Are Empty", func(t *testing.T) {
		rows := []*models.Row{
			models.NewRow().Set("Name", "a").Set("Album", "x"),
			models.NewRow().Set("Name", "b").Set("Extra", "dropped"),
		}

		for _, format := range []Format{Spreadsheet, Delimited, Structured} {
			path := filepath.Join(t.TempDir(), DefaultPath("rows", format))
			if _, err := Export(rows, path, format); err != nil {
				t.Fatalf("%s: Export failed: %v", format, err)
			}

			got, err := ReadRows(path, format)
			if err != nil {
				t.Fatalf("%s: ReadRows failed: %v", format, err)
			}
			if len(got) != 2 {
				t.Fatalf("%s: expected 2 rows, got %d", format, len(got))
			}
			if got[1]["Name"] != "b" || got[1]["Album"] != "" {
				t.Errorf("%s: unexpected second row %v", format, got[1])
			}
			if _, ok := got[1]["Extra"]; ok {
				t.Errorf("%s: column missing from the first row should be dropped", format)
			}
		}
	})

	t.Run("Column Order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.csv")
		if _, err := Export(TrackRows([]models.Track{believer()}), path, Delimited); err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		content := tu.MustReadFile(t, path)
		if !strings.HasPrefix(content, "Name,Artists,Album,Duration (ms),Popularity\n") {
			t.Errorf("unexpected header in %q", content)
		}

		path = filepath.Join(t.TempDir(), "tracks.json")
		if _, err := Export(TrackRows([]models.Track{believer()}), path, Structured); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		content = tu.MustReadFile(t, path)
		if strings.Index(content, `"Name"`) > strings.Index(content, `"Popularity"`) {
			t.Errorf("JSON keys out of column order: %s", content)
		}
	})

	t.Run("Empty Rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		if _, err := Export(nil, path, Delimited); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("expected empty file, got %d bytes", info.Size())
		}

		for _, format := range []Format{Spreadsheet, Structured} {
			path := filepath.Join(t.TempDir(), DefaultPath("empty", format))
			if _, err := Export(nil, path, format); err != nil {
				t.Fatalf("%s: Export failed: %v", format, err)
			}
			rows, err := ReadRows(path, format)
			if err != nil {
				t.Fatalf("%s: ReadRows failed: %v", format, err)
			}
			if len(rows) != 0 {
				t.Errorf("%s: expected no rows, got %d", format, len(rows))
			}
		}
	})

	t.Run("Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
		if _, err := Export(TrackRows([]models.Track{believer()}), path, Structured); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		tu.AssertFileExists(t, path)
	})

	t.Run("Missing Path", func(t *testing.T) {
		if _, err := Export(nil, "", Delimited); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
