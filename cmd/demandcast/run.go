package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/qventory/demandcast/internal/clean"
	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/internal/feature"
	"github.com/qventory/demandcast/internal/forecast"
	"github.com/qventory/demandcast/internal/ingest"
	"github.com/qventory/demandcast/internal/model"
	"github.com/qventory/demandcast/internal/output"
	"github.com/qventory/demandcast/internal/reorder"
	"github.com/qventory/demandcast/internal/repository/postgres"
	"github.com/qventory/demandcast/pkg/logger"
)

// prepare runs ingestion, cleaning and feature engineering on a workbook.
func prepare(path string, cfg *config.Config) ([]domain.FeatureRow, error) {
	loader := ingest.NewLoader(ingest.NewSimilarityMatcher(), cfg.Ingest.FuzzyThreshold)
	obs, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	cleaned := clean.Clean(obs, cfg.Clean)
	return feature.Engineer(cleaned, cfg.FeatureSpec())
}

func trainCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train the global demand model and persist the artifact",
		Flags: []cli.Flag{
			newInputFlag(),
			newModelFlag(cfg.Train.ModelPath),
		},
		Action: func(c *cli.Context) error {
			rows, err := prepare(c.String("input"), cfg)
			if err != nil {
				return err
			}
			reg, err := model.TrainGlobal(rows, cfg.FeatureSpec(), cfg.Train)
			if err != nil {
				return err
			}
			return reg.Save(c.String("model"))
		},
	}
}

func forecastCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Recursive day-by-day forecast with reorder quantities",
		Flags: []cli.Flag{
			newInputFlag(),
			newModelFlag(cfg.Train.ModelPath),
			newDBURLFlag(),
			&cli.StringFlag{Name: "output", Value: cfg.Forecast.OutputFile, Usage: "Output workbook path"},
			&cli.IntFlag{Name: "days", Value: cfg.Forecast.ForecastDays, Usage: "Forecast horizon in days"},
			&cli.IntFlag{Name: "lead-time", Value: cfg.Forecast.LeadTimeDays, Usage: "Replenishment lead time in days"},
			&cli.Float64Flag{Name: "z", Value: cfg.Forecast.ServiceLevelZ, Usage: "Service-level z-score"},
			&cli.BoolFlag{Name: "no-refit", Usage: "Predict with the persisted trees instead of re-fitting on the input data"},
		},
		Action: func(c *cli.Context) error {
			rows, reg, err := loadForForecast(c, cfg)
			if err != nil {
				return err
			}

			calc := reorder.NewCalculator(c.Float64("z"), c.Int("lead-time"))
			safety := calc.SafetyStock(observations(rows))

			runner := forecast.NewRunner(reg, cfg.FeatureSpec(), cfg.Forecast.Workers)
			entries, err := runner.Recursive(c.Context, rows, safety, c.Int("days"))
			if err != nil {
				return err
			}

			if err := output.WriteForecast(c.String("output"), entries); err != nil {
				return err
			}
			if url := c.String("db-url"); url != "" {
				return saveRun(c.Context, url, func(repo *postgres.ForecastRepository, at time.Time) error {
					return repo.SaveAll(c.Context, entries, at)
				})
			}
			return nil
		},
	}
}

func forecastMonthCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "forecast-month",
		Usage: "Single-shot month-ahead forecast (daily prediction scaled by the horizon)",
		Flags: []cli.Flag{
			newInputFlag(),
			newModelFlag(cfg.Train.ModelPath),
			newDBURLFlag(),
			&cli.StringFlag{Name: "output", Value: cfg.Forecast.MonthOutputFile, Usage: "Output workbook path"},
			&cli.IntFlag{Name: "days", Value: cfg.Forecast.ForecastDays, Usage: "Number of days the daily prediction is scaled by"},
			&cli.IntFlag{Name: "lead-time", Value: cfg.Forecast.MonthLeadTimeDays, Usage: "Replenishment lead time in days"},
			&cli.Float64Flag{Name: "z", Value: cfg.Forecast.ServiceLevelZ, Usage: "Service-level z-score"},
			&cli.BoolFlag{Name: "no-refit", Usage: "Predict with the persisted trees instead of re-fitting on the input data"},
		},
		Action: func(c *cli.Context) error {
			rows, reg, err := loadForForecast(c, cfg)
			if err != nil {
				return err
			}

			calc := reorder.NewCalculator(c.Float64("z"), c.Int("lead-time"))
			safety := calc.SafetyStock(observations(rows))

			runner := forecast.NewRunner(reg, cfg.FeatureSpec(), cfg.Forecast.Workers)
			forecasts, err := runner.NextMonth(rows, safety, c.Int("days"))
			if err != nil {
				return err
			}

			if err := output.WriteMonthForecast(c.String("output"), forecasts); err != nil {
				return err
			}
			if url := c.String("db-url"); url != "" {
				return saveRun(c.Context, url, func(repo *postgres.ForecastRepository, at time.Time) error {
					return repo.SaveMonth(c.Context, forecasts, at)
				})
			}
			return nil
		},
	}
}

// loadForForecast prepares the feature table and loads the persisted model.
// By default the model is then re-fit on the freshly engineered data before
// use, preserving the original pipeline's behavior: the artifact contributes
// its architecture, the trees are relearned from the input at hand.
func loadForForecast(c *cli.Context, cfg *config.Config) ([]domain.FeatureRow, *model.Regressor, error) {
	rows, err := prepare(c.String("input"), cfg)
	if err != nil {
		return nil, nil, err
	}

	reg, err := model.Load(c.String("model"))
	if err != nil {
		return nil, nil, err
	}
	if err := checkColumns(reg, cfg.FeatureSpec()); err != nil {
		return nil, nil, err
	}

	if !c.Bool("no-refit") {
		spec := cfg.FeatureSpec()
		X := make([][]float64, len(rows))
		y := make([]float64, len(rows))
		for i, row := range rows {
			X[i] = spec.Vector(row)
			y[i] = row.Sales
		}
		if err := reg.Fit(X, y, nil, nil); err != nil {
			return nil, nil, err
		}
		logger.Log.Info().Int("rows", len(rows)).Msg("re-fit model on forecast dataset")
	}
	return rows, reg, nil
}

// checkColumns ensures the persisted model and the current feature
// configuration agree on the predictor layout.
func checkColumns(reg *model.Regressor, spec domain.FeatureSpec) error {
	cols := spec.Columns()
	if len(reg.FeatureColumns) != len(cols) {
		return fmt.Errorf("%w: artifact expects %d feature columns, configuration produces %d",
			domain.ErrSchema, len(reg.FeatureColumns), len(cols))
	}
	for i, c := range cols {
		if reg.FeatureColumns[i] != c {
			return fmt.Errorf("%w: artifact feature column %d is %s, configuration produces %s",
				domain.ErrSchema, i, reg.FeatureColumns[i], c)
		}
	}
	return nil
}

func observations(rows []domain.FeatureRow) []domain.Observation {
	obs := make([]domain.Observation, len(rows))
	for i, r := range rows {
		obs[i] = r.Observation
	}
	return obs
}

func saveRun(ctx context.Context, url string, save func(*postgres.ForecastRepository, time.Time) error) error {
	db, err := postgres.NewDB(url)
	if err != nil {
		return err
	}
	defer db.Close()
	return save(postgres.NewForecastRepository(db), time.Now().UTC())
}
