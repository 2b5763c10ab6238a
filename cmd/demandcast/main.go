package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/seed"
	"github.com/qventory/demandcast/internal/storage"
	"github.com/qventory/demandcast/pkg/logger"
)

func newInputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "input",
		Usage:    "Path to the input XLSX workbook",
		Required: true,
		EnvVars:  []string{"INPUT_FILE"},
	}
}

func newModelFlag(defaultPath string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "model",
		Usage:   "Path of the model artifact",
		Value:   defaultPath,
		EnvVars: []string{"MODEL_PATH"},
	}
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Optional Postgres connection string for persisting forecast runs",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	app := &cli.App{
		Name:  "demandcast",
		Usage: "Forecast short-horizon SKU demand and derive reorder quantities",
		Commands: []*cli.Command{
			seedCommand(),
			trainCommand(cfg),
			forecastCommand(cfg),
			forecastMonthCommand(cfg),
			fetchCommand(cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Generate a synthetic retail sales workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Value: "sme_data.xlsx", Usage: "Output workbook path"},
			&cli.IntFlag{Name: "skus", Value: 10, Usage: "Number of SKUs to generate"},
			&cli.StringFlag{Name: "start", Value: "2024-01-01", Usage: "First day (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Value: "2025-12-31", Usage: "Last day (YYYY-MM-DD)"},
			&cli.Int64Flag{Name: "seed", Value: 42, Usage: "Random seed"},
		},
		Action: func(c *cli.Context) error {
			start, err := time.Parse("2006-01-02", c.String("start"))
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			end, err := time.Parse("2006-01-02", c.String("end"))
			if err != nil {
				return fmt.Errorf("invalid end date: %w", err)
			}
			rows := seed.Generate(seed.Config{
				NumSKUs:   c.Int("skus"),
				StartDate: start,
				EndDate:   end,
				Seed:      c.Int64("seed"),
			})
			return seed.WriteWorkbook(c.String("output"), rows)
		},
	}
}

func fetchCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download an input workbook from S3-compatible object storage",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "object", Required: true, Usage: "Object key in the configured bucket"},
			&cli.StringFlag{Name: "dest", Value: "./data/input.xlsx", Usage: "Local destination path"},
		},
		Action: func(c *cli.Context) error {
			store, err := storage.NewMinioStore(cfg.Storage)
			if err != nil {
				return err
			}
			return store.Download(c.Context, c.String("object"), c.String("dest"))
		},
	}
}
