// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// initConfigCommand writes the example configuration.
func initConfigCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "init_config",
		Aliases:   []string{"init-config"},
		Usage:     "Write an example config.toml",
		ArgsUsage: "[path]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Action: r.InitConfig,
	}
}

// initDBCommand creates every table.
func initDBCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "init_db",
		Aliases: []string{"init-db"},
		Usage:   "Create the database tables (runs pending migrations)",
		Action:  r.InitDB,
	}
}

// destroyDBCommand drops every table.
func destroyDBCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "destroy_db",
		Aliases: []string{"destroy-db"},
		Usage:   "Drop every table (rolls back all migrations)",
		Action:  r.DestroyDB,
	}
}

// importMoviesCommand replaces the movies table with a dataset file.
func importMoviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import_movie_dataset",
		Aliases:   []string{"import-movies"},
		Usage:     "Replace all movies with the rows of an IMDB 5000 dataset (.csv, .zip or http(s) URL)",
		ArgsUsage: "<path>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "member",
				Usage: "CSV file to read inside a ZIP archive (overrides dataset.member)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
		},
		Action: r.ImportMovieDataset,
	}
}

// generateUsersCommand rebuilds the demo social graph.
func generateUsersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate_user_network",
		Aliases: []string{"generate-users"},
		Usage:   "Replace all users with seed accounts, fake accounts and random follows",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Fake-data seed for reproducible accounts (0 picks a random seed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
		},
		Action: r.GenerateUserNetwork,
	}
}

// statsCommand prints table counts.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show applied migrations and row counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Stats,
	}
}

// exportMoviesCommand writes stored movies to a file or stdout.
func exportMoviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "export_movies",
		Aliases: []string{"export-movies"},
		Usage:   "Export stored movies (csv output can be imported again)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, md, text or json",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (stdout when empty)",
			},
		},
		Action: r.ExportMovies,
	}
}

// exportNetworkCommand writes users and their follows to a file or stdout.
func exportNetworkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "export_network",
		Aliases: []string{"export-network"},
		Usage:   "Export users and who they follow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv, md, text or json",
				Value:   "md",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (stdout when empty)",
			},
		},
		Action: r.ExportNetwork,
	}
}

// runServerCommand starts the web application.
func runServerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "runserver",
		Aliases: []string{"serve"},
		Usage:   "Serve the site until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the site in a browser once listening",
			},
		},
		Action: r.RunServer,
	}
}

// browseCommand returns the top-level TUI command for browsing movies and users.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse movies and the user network in an interactive TUI",
		Action:  r.Browse,
	}
}
