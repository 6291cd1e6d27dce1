// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// trainCommand checks out a classifier, trains it and checks it back in.
func trainCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train a classifier with labelled documents",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "id",
				Usage:    "Classifier ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "label",
				Aliases: []string{"l"},
				Usage:   "Label of the document given by --text or --file",
			},
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"t"},
				Usage:   "Document text",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the document from a file",
			},
			&cli.StringFlag{
				Name:  "batch",
				Usage: "JSON lines file of {\"label\": ..., \"text\": ...} documents",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
		},
		Action: r.Train,
	}
}

// classifyCommand reads the last committed classifier and scores a document.
func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Classify a document with the last trained classifier",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "id",
				Usage:    "Classifier ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "text",
				Aliases: []string{"t"},
				Usage:   "Document text",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the document from a file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv or markdown",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to a file instead of stdout",
			},
		},
		Action: r.Classify,
	}
}

// listCommand prints every stored classifier record.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stored classifiers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv or markdown",
				Value: "text",
			},
		},
		Action: r.List,
	}
}

// resetCommand deletes a classifier record.
func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Delete a classifier so the next training starts from scratch",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "id",
				Usage:    "Classifier ID",
				Required: true,
			},
		},
		Action: r.Reset,
	}
}

// serveCommand exposes classify, train and list over HTTP.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve classification and training over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.addr from the config)",
			},
		},
		Action: r.Serve,
	}
}
