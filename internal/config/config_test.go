package config

import (
	"reflect"
	"testing"
)

func TestParseIntList(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"1,7,30", []int{1, 7, 30}},
		{" 1 , 7 ", []int{1, 7}},
		{"7", []int{7}},
		{"", nil},
		{"1,x,3", []int{1, 3}},
	}
	for _, c := range cases {
		got := parseIntList(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseIntList(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Ingest.FuzzyThreshold != 80 {
		t.Errorf("FuzzyThreshold = %v, want 80", cfg.Ingest.FuzzyThreshold)
	}
	if cfg.Clean.OutlierQuantile != 0.99 {
		t.Errorf("OutlierQuantile = %v, want 0.99", cfg.Clean.OutlierQuantile)
	}
	if cfg.Forecast.ServiceLevelZ != 1.65 {
		t.Errorf("ServiceLevelZ = %v, want 1.65", cfg.Forecast.ServiceLevelZ)
	}
	if cfg.Forecast.LeadTimeDays != 7 || cfg.Forecast.MonthLeadTimeDays != 30 {
		t.Errorf("lead times = %d/%d, want 7/30", cfg.Forecast.LeadTimeDays, cfg.Forecast.MonthLeadTimeDays)
	}

	spec := cfg.FeatureSpec()
	if !reflect.DeepEqual(spec.LagOffsets, []int{1, 7, 30}) {
		t.Errorf("LagOffsets = %v, want [1 7 30]", spec.LagOffsets)
	}
	if spec.WarmupDays() != 30 {
		t.Errorf("WarmupDays = %d, want 30", spec.WarmupDays())
	}
}
