package output

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/qventory/demandcast/internal/domain"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteForecast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.xlsx")
	entries := []domain.ForecastEntry{
		{SKU: "SKU_1", Day: 1, ForecastSales: 24.5, SafetyStock: 12, ReorderQty: 36},
		{SKU: "SKU_1", Day: 2, ForecastSales: 23.1, SafetyStock: 12, ReorderQty: 35},
	}
	if err := WriteForecast(path, entries); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	wantHeader := []string{"SKU", "Day", "Forecast_Sales", "Safety_Stock", "Reorder_Qty"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][0] != "SKU_1" || rows[1][1] != "1" || rows[1][4] != "36" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
}

func TestWriteMonthForecast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "month.xlsx")
	forecasts := []domain.MonthForecast{
		{SKU: "SKU_1", ForecastMonthSales: 750, SafetyStock: 40, ReorderQty: 790},
	}
	if err := WriteMonthForecast(path, forecasts); err != nil {
		t.Fatal(err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][1] != "Forecast_Month_Sales" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != "790" {
		t.Errorf("ReorderQty cell = %q, want 790", rows[1][3])
	}
}
