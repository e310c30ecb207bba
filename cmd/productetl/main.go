package main

import (
	"os"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.DefaultLogger.Error().Err(err).Msg("productetl failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "productetl",
		Usage: "Load the product catalogue into the relational and document stores",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a configuration file (YAML, JSON or BCL)",
				EnvVars: []string{"PRODUCTETL_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Write to in-memory stores instead of the configured databases",
			},
			&cli.StringFlag{
				Name:  "documents-out",
				Usage: "Write documents to this file (.csv or JSON lines, - for stdout) instead of MongoDB",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the run record as JSON when the run ends",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Copy the relational product snapshot into the document store once",
				Action: runRecurring,
			},
			{
				Name:  "seed",
				Usage: "Bootstrap both stores from the product spreadsheet",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Spreadsheet to read (xlsx, csv or json)",
					},
					&cli.StringFlag{
						Name:  "sheet",
						Usage: "Worksheet name; defaults to the first sheet",
					},
					&cli.BoolFlag{
						Name:  "no-truncate",
						Usage: "Keep existing relational rows; conflicting keys are skipped",
					},
					&cli.BoolFlag{
						Name:  "auto-create",
						Usage: "Create the relational tables when they do not exist",
					},
				},
				Action: runSeed,
			},
			{
				Name:   "schedule",
				Usage:  "Run the recurring pipeline on the configured schedule with retries",
				Action: runSchedule,
			},
			{
				Name:   "history",
				Usage:  "List recorded runs",
				Action: listHistory,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration with secrets masked",
				Action: printConfig,
			},
		},
	}
}
