package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// WriteForecast writes the per-day forecast table, one row per (SKU, day).
func WriteForecast(path string, entries []domain.ForecastEntry) error {
	header := []interface{}{"SKU", "Day", "Forecast_Sales", "Safety_Stock", "Reorder_Qty"}
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{e.SKU, e.Day, e.ForecastSales, e.SafetyStock, e.ReorderQty})
	}
	return writeSheet(path, header, rows)
}

// WriteMonthForecast writes the single-shot month-ahead table, one row per SKU.
func WriteMonthForecast(path string, forecasts []domain.MonthForecast) error {
	header := []interface{}{"SKU", "Forecast_Month_Sales", "Safety_Stock", "Reorder_Qty"}
	rows := make([][]interface{}, 0, len(forecasts))
	for _, f := range forecasts {
		rows = append(rows, []interface{}{f.SKU, f.ForecastMonthSales, f.SafetyStock, f.ReorderQty})
	}
	return writeSheet(path, header, rows)
}

func writeSheet(path string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	logger.Log.Info().Str("file", path).Int("rows", len(rows)).Msg("wrote forecast workbook")
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
