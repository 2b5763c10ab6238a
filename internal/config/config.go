package config

import (
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/qventory/demandcast/internal/domain"
)

type Config struct {
	Ingest   IngestConfig
	Clean    CleanConfig
	Feature  FeatureConfig
	Train    TrainConfig
	Forecast ForecastConfig
	Database DatabaseConfig
	Storage  StorageConfig
	App      AppConfig
}

type IngestConfig struct {
	// FuzzyThreshold is the minimum similarity score (0-100) for a raw
	// header to be accepted as one of the canonical columns.
	FuzzyThreshold float64
}

type CleanConfig struct {
	// OutlierQuantile is the global quantile at which Sales is capped.
	OutlierQuantile float64
}

type FeatureConfig struct {
	LagOffsets     []int
	RollingWindows []int
}

type TrainConfig struct {
	SplitRatio          float64
	NumTrees            int
	LearningRate        float64
	MaxDepth            int
	MinLeafSamples      int
	EarlyStoppingRounds int
	ModelPath           string
}

type ForecastConfig struct {
	ForecastDays      int
	LeadTimeDays      int
	MonthLeadTimeDays int
	ServiceLevelZ     float64
	Workers           int
	OutputFile        string
	MonthOutputFile   string
}

type DatabaseConfig struct {
	URL string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type AppConfig struct {
	LogLevel string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration from the environment (and .env when present),
// applying the documented defaults for anything unset. Defaults match the
// original pipeline values.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()

		viper.SetDefault("FUZZY_MATCH_THRESHOLD", 80.0)
		viper.SetDefault("OUTLIER_QUANTILE", 0.99)
		viper.SetDefault("LAG_OFFSETS", "1,7,30")
		viper.SetDefault("ROLLING_WINDOWS", "7,14,30")
		viper.SetDefault("TRAIN_SPLIT_RATIO", 0.8)
		viper.SetDefault("TRAIN_NUM_TREES", 1000)
		viper.SetDefault("TRAIN_LEARNING_RATE", 0.05)
		viper.SetDefault("TRAIN_MAX_DEPTH", 5)
		viper.SetDefault("TRAIN_MIN_LEAF_SAMPLES", 20)
		viper.SetDefault("TRAIN_EARLY_STOPPING_ROUNDS", 50)
		viper.SetDefault("MODEL_PATH", "global_demand_model.json")
		viper.SetDefault("FORECAST_DAYS", 30)
		viper.SetDefault("LEAD_TIME_DAYS", 7)
		viper.SetDefault("MONTH_LEAD_TIME_DAYS", 30)
		viper.SetDefault("SERVICE_LEVEL_Z", 1.65)
		viper.SetDefault("FORECAST_WORKERS", 4)
		viper.SetDefault("FORECAST_OUTPUT_FILE", "SME_forecast_reorder.xlsx")
		viper.SetDefault("MONTH_FORECAST_OUTPUT_FILE", "SME_forecast_next_month.xlsx")
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("LOG_LEVEL", "info")

		viper.AutomaticEnv()

		instance = &Config{
			Ingest: IngestConfig{
				FuzzyThreshold: viper.GetFloat64("FUZZY_MATCH_THRESHOLD"),
			},
			Clean: CleanConfig{
				OutlierQuantile: viper.GetFloat64("OUTLIER_QUANTILE"),
			},
			Feature: FeatureConfig{
				LagOffsets:     parseIntList(viper.GetString("LAG_OFFSETS")),
				RollingWindows: parseIntList(viper.GetString("ROLLING_WINDOWS")),
			},
			Train: TrainConfig{
				SplitRatio:          viper.GetFloat64("TRAIN_SPLIT_RATIO"),
				NumTrees:            viper.GetInt("TRAIN_NUM_TREES"),
				LearningRate:        viper.GetFloat64("TRAIN_LEARNING_RATE"),
				MaxDepth:            viper.GetInt("TRAIN_MAX_DEPTH"),
				MinLeafSamples:      viper.GetInt("TRAIN_MIN_LEAF_SAMPLES"),
				EarlyStoppingRounds: viper.GetInt("TRAIN_EARLY_STOPPING_ROUNDS"),
				ModelPath:           viper.GetString("MODEL_PATH"),
			},
			Forecast: ForecastConfig{
				ForecastDays:      viper.GetInt("FORECAST_DAYS"),
				LeadTimeDays:      viper.GetInt("LEAD_TIME_DAYS"),
				MonthLeadTimeDays: viper.GetInt("MONTH_LEAD_TIME_DAYS"),
				ServiceLevelZ:     viper.GetFloat64("SERVICE_LEVEL_Z"),
				Workers:           viper.GetInt("FORECAST_WORKERS"),
				OutputFile:        viper.GetString("FORECAST_OUTPUT_FILE"),
				MonthOutputFile:   viper.GetString("MONTH_FORECAST_OUTPUT_FILE"),
			},
			Database: DatabaseConfig{
				URL: viper.GetString("DATABASE_URL"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			App: AppConfig{
				LogLevel: viper.GetString("LOG_LEVEL"),
			},
		}
	})

	return instance
}

// FeatureSpec converts the configured lags and windows into the domain spec
// shared by feature engineering, training and forecasting.
func (c *Config) FeatureSpec() domain.FeatureSpec {
	return domain.FeatureSpec{
		LagOffsets:     c.Feature.LagOffsets,
		RollingWindows: c.Feature.RollingWindows,
	}
}

func parseIntList(s string) []int {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
