// submodule cmd contains command definitions
package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// exportFlags are shared by every command that can write its results to a file.
func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"e"},
			Usage:   "Export results to a file (excel, csv, json)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export file path, defaults to the configured export directory",
		},
	}
}

func limitFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"l"},
		Usage:   "Maximum number of items to return",
		Value:   value,
	}
}

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "Target device ID, defaults to the active device",
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// authCommand handles OAuth2 authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize spotylog with your Spotify account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Run the authorization code flow and store the access token",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-save",
						Usage: "Print the token instead of writing it to the configuration file",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "url",
				Usage:  "Print the authorization URL without starting the redirect listener",
				Action: r.AuthURL,
			},
			{
				Name:   "whoami",
				Usage:  "Show the profile of the authorized user",
				Flags:  jsonFlags(),
				Action: r.WhoAmI,
			},
		},
	}
}

// searchCommand handles catalog search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search the catalog for tracks, albums, artists or playlists",
		ArgsUsage: "<query> [query...]",
		Flags: flags(
			[]cli.Flag{
				&cli.StringFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Usage:   "Item type (track, album, artist, playlist)",
					Value:   "track",
				},
				limitFlag(10),
				&cli.IntFlag{
					Name:  "workers",
					Usage: "Concurrent searches when several queries are given",
					Value: 5,
				},
			},
			exportFlags(),
			jsonFlags(),
		),
		Action: r.Search,
	}
}

// playlistsCommand handles playlist reads, writes and tracking
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: flags(
					[]cli.Flag{
						limitFlag(20),
						&cli.IntFlag{Name: "offset", Usage: "Index of the first playlist"},
						&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Fetch every page"},
					},
					exportFlags(),
					jsonFlags(),
				),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its tracks",
				ArgsUsage: "<playlist-id>",
				Flags:     flags(exportFlags(), jsonFlags()),
				Action:    r.PlaylistsShow,
			},
			{
				Name:      "create",
				Usage:     "Create an empty playlist",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the playlist public"},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:      "generate",
				Usage:     "Create a playlist filled with tracks, recommended from your top tracks by default",
				ArgsUsage: "<name> [track-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the playlist public"},
					&cli.IntFlag{Name: "seeds", Usage: "Number of top tracks used as recommendation seeds", Value: 5},
					limitFlag(20),
				},
				Action: r.PlaylistsGenerate,
			},
			{
				Name:      "add",
				Usage:     "Add tracks to a playlist",
				ArgsUsage: "<playlist-id> <track-id> [track-id...]",
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove tracks from a playlist",
				ArgsUsage: "<playlist-id> <track-id> [track-id...]",
				Action:    r.PlaylistsRemove,
			},
			{
				Name:      "reorder",
				Usage:     "Move a range of tracks within a playlist",
				ArgsUsage: "<playlist-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "start", Usage: "Position of the first track to move", Required: true},
					&cli.IntFlag{Name: "before", Usage: "Position the range is inserted before", Required: true},
					&cli.IntFlag{Name: "length", Usage: "Number of tracks to move", Value: 1},
				},
				Action: r.PlaylistsReorder,
			},
			{
				Name:      "update",
				Usage:     "Change a playlist's name, description or visibility",
				ArgsUsage: "<playlist-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.StringFlag{Name: "description", Usage: "New description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the playlist public (--public=false for private)"},
				},
				Action: r.PlaylistsUpdate,
			},
			{
				Name:      "snapshot",
				Usage:     "Record the playlist's current tracks and show what changed since the last snapshot",
				ArgsUsage: "<playlist-id>",
				Flags:     jsonFlags(),
				Action:    r.PlaylistsSnapshot,
			},
			{
				Name:      "history",
				Usage:     "List recorded snapshots of a playlist",
				ArgsUsage: "<playlist-id>",
				Flags:     jsonFlags(),
				Action:    r.PlaylistsHistory,
			},
			{
				Name:      "diff",
				Usage:     "Compare two recorded snapshots",
				ArgsUsage: "<old-snapshot-id> <new-snapshot-id>",
				Flags:     jsonFlags(),
				Action:    r.PlaylistsDiff,
			},
			{
				Name:      "export",
				Usage:     "Export the tracks of one or more playlists, one file per playlist",
				ArgsUsage: "[playlist-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (excel, csv, json), defaults to the configured format",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory, defaults to the configured export directory",
					},
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Export every playlist you follow"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent file writers", Value: 3},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// playerCommand handles playback control
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Control playback (requires Spotify Premium)",
		Commands: []*cli.Command{
			{
				Name:      "play",
				Usage:     "Start or resume playback",
				ArgsUsage: "[track-id...]",
				Flags: []cli.Flag{
					deviceFlag(),
					&cli.StringFlag{Name: "context", Usage: "Album, artist or playlist URI to play"},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerNext,
			},
			{
				Name:    "previous",
				Aliases: []string{"prev"},
				Usage:   "Skip to the previous track",
				Flags:   []cli.Flag{deviceFlag()},
				Action:  r.PlayerPrevious,
			},
			{
				Name:      "volume",
				Usage:     "Set the playback volume",
				ArgsUsage: "<percent>",
				Flags:     []cli.Flag{deviceFlag()},
				Action:    r.PlayerVolume,
			},
		},
	}
}

// libraryCommand handles saved tracks
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage your saved tracks",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save tracks to your library",
				ArgsUsage: "<track-id> [track-id...]",
				Action:    r.LibrarySave,
			},
			{
				Name:      "remove",
				Usage:     "Remove tracks from your library",
				ArgsUsage: "<track-id> [track-id...]",
				Action:    r.LibraryRemove,
			},
			{
				Name:      "check",
				Usage:     "Check whether tracks are saved",
				ArgsUsage: "<track-id> [track-id...]",
				Flags:     jsonFlags(),
				Action:    r.LibraryCheck,
			},
		},
	}
}

// meCommand handles personal listening data
func meCommand(r *Runner) *cli.Command {
	timeRange := &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range (short, medium, long)",
		Value:   "medium",
	}

	return &cli.Command{
		Name:  "me",
		Usage: "Your listening data",
		Commands: []*cli.Command{
			{
				Name:   "top-tracks",
				Usage:  "Your most played tracks",
				Flags:  flags([]cli.Flag{timeRange, limitFlag(20)}, exportFlags(), jsonFlags()),
				Action: r.MeTopTracks,
			},
			{
				Name:   "top-artists",
				Usage:  "Your most played artists",
				Flags:  flags([]cli.Flag{timeRange, limitFlag(20)}, exportFlags(), jsonFlags()),
				Action: r.MeTopArtists,
			},
			{
				Name:  "recent",
				Usage: "Your recently played tracks",
				Flags: flags(
					[]cli.Flag{
						limitFlag(50),
						&cli.StringFlag{Name: "after", Usage: "Only plays after this time (RFC 3339 or unix milliseconds)"},
						&cli.StringFlag{Name: "before", Usage: "Only plays before this time (RFC 3339 or unix milliseconds)"},
					},
					exportFlags(),
					jsonFlags(),
				),
				Action: r.MeRecent,
			},
		},
	}
}

// browseCommand handles editorial content and recommendations
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "New releases, featured playlists and recommendations",
		Commands: []*cli.Command{
			{
				Name:   "new-releases",
				Usage:  "Newly released albums",
				Flags:  flags([]cli.Flag{limitFlag(20)}, exportFlags(), jsonFlags()),
				Action: r.BrowseNewReleases,
			},
			{
				Name:   "featured",
				Usage:  "Featured playlists",
				Flags:  flags([]cli.Flag{limitFlag(20)}, exportFlags(), jsonFlags()),
				Action: r.BrowseFeatured,
			},
			{
				Name:  "recommendations",
				Usage: "Tracks recommended from seed tracks, artists or genres",
				Flags: flags(
					[]cli.Flag{
						&cli.StringSliceFlag{Name: "track", Usage: "Seed track ID (repeatable)"},
						&cli.StringSliceFlag{Name: "artist", Usage: "Seed artist ID (repeatable)"},
						&cli.StringSliceFlag{Name: "genre", Usage: "Seed genre (repeatable)"},
						limitFlag(20),
					},
					exportFlags(),
					jsonFlags(),
				),
				Action: r.BrowseRecommendations,
			},
		},
	}
}

// setupCommand handles first-run initialization
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the snapshot database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a configuration file from the template",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the snapshot database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rollback", Usage: "Roll back the most recent migration"},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand launches the interactive playlist browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse playlists and record snapshots interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving logs while the TUI owns the terminal",
				Value: filepath.Join(os.TempDir(), "spotylog", "tui.log"),
			},
			&cli.BoolFlag{Name: "inline", Usage: "Render in the current screen instead of the alternate screen"},
		},
		Action: r.TUI,
	}
}
