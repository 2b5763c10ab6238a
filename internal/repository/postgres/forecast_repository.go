package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// ForecastRepository persists forecast runs so downstream reporting can read
// them without touching the workbook outputs.
type ForecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

const upsertForecastQuery = `
	INSERT INTO demand_forecasts (sku, horizon_day, forecast_sales, safety_stock, reorder_qty, generated_at)
	VALUES (:sku, :horizon_day, :forecast_sales, :safety_stock, :reorder_qty, :generated_at)
	ON CONFLICT (sku, horizon_day, generated_at)
	DO UPDATE SET
		forecast_sales = EXCLUDED.forecast_sales,
		safety_stock = EXCLUDED.safety_stock,
		reorder_qty = EXCLUDED.reorder_qty`

const upsertMonthForecastQuery = `
	INSERT INTO month_forecasts (sku, forecast_month_sales, safety_stock, reorder_qty, generated_at)
	VALUES (:sku, :forecast_month_sales, :safety_stock, :reorder_qty, :generated_at)
	ON CONFLICT (sku, generated_at)
	DO UPDATE SET
		forecast_month_sales = EXCLUDED.forecast_month_sales,
		safety_stock = EXCLUDED.safety_stock,
		reorder_qty = EXCLUDED.reorder_qty`

type forecastRecord struct {
	domain.ForecastEntry
	GeneratedAt time.Time `db:"generated_at"`
}

type monthForecastRecord struct {
	domain.MonthForecast
	GeneratedAt time.Time `db:"generated_at"`
}

// SaveAll upserts one forecast run in a single transaction, keyed by
// (sku, horizon_day, generated_at).
func (r *ForecastRepository) SaveAll(ctx context.Context, entries []domain.ForecastEntry, generatedAt time.Time) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]forecastRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, forecastRecord{ForecastEntry: e, GeneratedAt: generatedAt})
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, upsertForecastQuery, records); err != nil {
			return fmt.Errorf("failed to upsert forecast rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Int("rows", len(records)).Msg("saved forecast run to database")
	return nil
}

// SaveMonth upserts a month-ahead run, keyed by (sku, generated_at).
func (r *ForecastRepository) SaveMonth(ctx context.Context, forecasts []domain.MonthForecast, generatedAt time.Time) error {
	if len(forecasts) == 0 {
		return nil
	}
	records := make([]monthForecastRecord, 0, len(forecasts))
	for _, f := range forecasts {
		records = append(records, monthForecastRecord{MonthForecast: f, GeneratedAt: generatedAt})
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, upsertMonthForecastQuery, records); err != nil {
			return fmt.Errorf("failed to upsert month forecast rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Int("rows", len(records)).Msg("saved month forecast run to database")
	return nil
}
