// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "check",
				Usage:  "Validate configuration and check Spotify credentials",
				Action: r.SetupCheck,
			},
		},
	}
}

// songsCommand handles the local generated playlists
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage generated playlists stored locally",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import generated songs from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file with a song array or {name, description, mood, songs}",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Playlist name (overrides the file)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description (overrides the file)",
					},
					&cli.StringFlag{
						Name:  "mood",
						Usage: "Playlist mood, used to pick a tempo band",
					},
					&cli.BoolFlag{
						Name:  "correct",
						Usage: "Repair missing tempo and duration before storing",
					},
				},
				Action: r.SongsImport,
			},
			{
				Name:  "list",
				Usage: "List playlists, or the songs of one playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist ID",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:  "correct",
				Usage: "Repair tempo and duration, optionally capping songs per artist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "min-bpm",
						Usage: "Lower tempo bound",
					},
					&cli.IntFlag{
						Name:  "max-bpm",
						Usage: "Upper tempo bound",
					},
					&cli.StringFlag{
						Name:  "mood",
						Usage: "Mood used to pick the tempo band (defaults to the playlist mood)",
					},
					&cli.IntFlag{
						Name:  "max-per-artist",
						Usage: "Maximum songs per artist (0 disables the cap)",
					},
					&cli.IntFlag{
						Name:  "min-artists",
						Usage: "Warn when fewer unique artists remain",
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random seed for reproducible output",
					},
				},
				Action: r.SongsCorrect,
			},
		},
	}
}

// exportCommand handles pushing playlists to the streaming platform
func exportCommand(r *Runner) *cli.Command {
	sharedFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:  "description",
				Usage: "Description to use instead of the stored one",
			},
			&cli.BoolFlag{
				Name:  "no-description",
				Usage: "Create the playlist without a description",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Make the playlist public",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print collected metrics when done",
			},
			platformFlag(),
		}
	}

	return &cli.Command{
		Name:  "export",
		Usage: "Export playlists to Spotify",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Export one playlist",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "report-format",
						Usage: "Write a report: csv, markdown, json or txt",
					},
					&cli.StringFlag{
						Name:  "report-dir",
						Usage: "Directory for the report",
						Value: ".",
					},
				}, sharedFlags()...),
				Action: r.ExportRun,
			},
			{
				Name:  "all",
				Usage: "Export every local playlist (or the given ones) concurrently",
				Flags: append([]cli.Flag{
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist ID (repeatable)",
					},
					&cli.StringFlag{
						Name:  "report-format",
						Usage: "Report format: csv, markdown, json or txt",
						Value: formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:  "report-dir",
						Usage: "Output directory (default: tunesmith_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports",
						Value: 2,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlists started per second",
						Value: 1,
					},
				}, sharedFlags()...),
				Action: r.ExportAll,
			},
			{
				Name:  "history",
				Usage: "Show recorded export attempts of a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.ExportHistory,
			},
		},
	}
}

// matchCommand resolves single songs for debugging
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Debug track resolution",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Resolve one song and show the score breakdown",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Artist name",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Print collected metrics when done",
					},
				},
				Action: r.MatchSearch,
			},
		},
	}
}
