package main

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/model"
	"github.com/qventory/demandcast/internal/seed"
)

func testPipelineConfig() *config.Config {
	return &config.Config{
		Ingest: config.IngestConfig{FuzzyThreshold: 80},
		Clean:  config.CleanConfig{OutlierQuantile: 0.99},
		Feature: config.FeatureConfig{
			LagOffsets:     []int{1, 7, 30},
			RollingWindows: []int{7, 14, 30},
		},
	}
}

// End-to-end: generate a synthetic workbook, ingest it through the fuzzy
// header mapper, clean and feature-engineer, and check the resulting table
// is fully populated.
func TestPrepare_EndToEnd(t *testing.T) {
	cfg := testPipelineConfig()

	rows := seed.Generate(seed.Config{
		NumSKUs:   2,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Seed:      42,
	})
	path := filepath.Join(t.TempDir(), "sme_data.xlsx")
	if err := seed.WriteWorkbook(path, rows); err != nil {
		t.Fatal(err)
	}

	features, err := prepare(path, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// 91 days per SKU, 30-day warm-up: 61 surviving rows each.
	if want := 2 * 61; len(features) != want {
		t.Fatalf("got %d feature rows, want %d", len(features), want)
	}

	spec := cfg.FeatureSpec()
	for _, row := range features {
		if row.SKU == "" {
			t.Fatal("feature row without SKU")
		}
		for i, v := range spec.Vector(row) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s %v: feature %s is not finite", row.SKU, row.Date, spec.Columns()[i])
			}
		}
	}
}

func TestCheckColumns(t *testing.T) {
	cfg := testPipelineConfig()
	spec := cfg.FeatureSpec()

	reg := &model.Regressor{FeatureColumns: spec.Columns()}
	if err := checkColumns(reg, spec); err != nil {
		t.Fatalf("matching columns rejected: %v", err)
	}

	reg.FeatureColumns = reg.FeatureColumns[:len(reg.FeatureColumns)-1]
	if err := checkColumns(reg, spec); err == nil {
		t.Fatal("mismatched column count accepted")
	}
}
