package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// dateLayouts are tried in order when a Date cell is not an Excel serial
// number. Merchant exports are inconsistent; the serial-number path covers
// natively formatted date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01-02-06",
	"1/2/2006",
	"1/2/06 15:04",
	time.RFC3339,
}

// Loader reads a workbook's first sheet and maps its free-text headers onto
// the canonical observation schema.
type Loader struct {
	matcher   HeaderMatcher
	threshold float64
}

func NewLoader(matcher HeaderMatcher, threshold float64) *Loader {
	return &Loader{matcher: matcher, threshold: threshold}
}

// Load reads the workbook at path into observations. Columns that fail the
// fuzzy match are dropped; a missing required column or an unparsable date
// fails the whole load with domain.ErrSchema.
func (l *Loader) Load(path string) ([]domain.Observation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", domain.ErrSchema, path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("%w: workbook %s is empty", domain.ErrSchema, path)
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	colMap := MapHeaders(header, l.matcher, l.threshold)
	byName := make(map[string]int, len(colMap))
	for idx, name := range colMap {
		byName[name] = idx
	}
	for _, required := range domain.RequiredColumns {
		if _, ok := byName[required]; !ok {
			return nil, fmt.Errorf("%w: no column matched %s (threshold %.0f)", domain.ErrSchema, required, l.threshold)
		}
	}
	logger.Log.Debug().
		Int("raw_columns", len(header)).
		Int("mapped_columns", len(colMap)).
		Msg("mapped workbook header")

	var obs []domain.Observation
	line := 1
	for rows.Next() {
		line++
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if emptyRecord(record) {
			continue
		}

		cell := func(name string) string {
			idx, ok := byName[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		date, err := parseDate(cell("Date"))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrSchema, line, err)
		}

		obs = append(obs, domain.Observation{
			SKU:          cell("SKU"),
			Date:         date,
			Sales:        parseNumeric(cell("Sales")),
			Price:        parseNumeric(cell("Price")),
			Promotion:    parseNumeric(cell("Promotion")),
			CurrentStock: parseNumeric(cell("Current_Stock")),
		})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}

	logger.Log.Info().Int("rows", len(obs)).Str("file", path).Msg("loaded workbook")
	return obs, nil
}

func emptyRecord(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumeric turns a cell into a float64, with NaN standing in for blank
// or unreadable values so the cleaner can apply its fill rules. Boolean-ish
// text (promotion flags) becomes 0/1.
func parseNumeric(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		return 1
	case "false", "no":
		return 0
	}
	return math.NaN()
}

// parseDate accepts Excel serial numbers and the common textual layouts.
// An unparsable date is an error, never a null.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel date serial %q", s)
		}
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
