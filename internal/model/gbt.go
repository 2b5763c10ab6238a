package model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/internal/domain"
	"github.com/qventory/demandcast/pkg/logger"
)

// Params are the regressor's hyperparameters. They are part of the persisted
// artifact, which is how a reloaded model can be re-fit on fresh data with
// the same architecture.
type Params struct {
	NumTrees            int     `json:"num_trees"`
	LearningRate        float64 `json:"learning_rate"`
	MaxDepth            int     `json:"max_depth"`
	MinLeafSamples      int     `json:"min_leaf_samples"`
	EarlyStoppingRounds int     `json:"early_stopping_rounds"`
}

// Regressor is a gradient-boosted ensemble of regression trees with squared
// loss. Predictions are the base score plus the learning-rate-scaled sum of
// tree outputs. Predict is safe for concurrent use once Fit has returned.
type Regressor struct {
	Params         Params   `json:"params"`
	BaseScore      float64  `json:"base_score"`
	Trees          []*node  `json:"trees"`
	FeatureColumns []string `json:"feature_columns"`
}

func New(cfg config.TrainConfig) *Regressor {
	return &Regressor{
		Params: Params{
			NumTrees:            cfg.NumTrees,
			LearningRate:        cfg.LearningRate,
			MaxDepth:            cfg.MaxDepth,
			MinLeafSamples:      cfg.MinLeafSamples,
			EarlyStoppingRounds: cfg.EarlyStoppingRounds,
		},
	}
}

// Fit trains the ensemble on (X, y). When a validation set is given, fitting
// stops once validation RMSE has not improved for EarlyStoppingRounds
// consecutive stages, and the ensemble is truncated to its best stage.
// Calling Fit on a previously fitted model discards the old trees.
func (r *Regressor) Fit(X [][]float64, y []float64, valX [][]float64, valY []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty training set", domain.ErrInsufficientData)
	}

	r.Trees = nil
	r.BaseScore = meanAll(y)

	pred := constants(len(y), r.BaseScore)
	valPred := constants(len(valY), r.BaseScore)
	residual := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	bestRMSE := math.Inf(1)
	bestStage := 0

	for t := 0; t < r.Params.NumTrees; t++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree := buildTree(X, residual, idx, 0, r.Params.MaxDepth, r.Params.MinLeafSamples)
		r.Trees = append(r.Trees, tree)

		for i := range pred {
			pred[i] += r.Params.LearningRate * tree.predict(X[i])
		}

		if len(valX) == 0 {
			continue
		}
		for i := range valPred {
			valPred[i] += r.Params.LearningRate * tree.predict(valX[i])
		}
		rmse := rootMeanSquaredError(valPred, valY)
		if rmse < bestRMSE {
			bestRMSE = rmse
			bestStage = t + 1
		} else if t+1-bestStage >= r.Params.EarlyStoppingRounds {
			logger.Log.Info().
				Int("stage", t+1).
				Int("best_stage", bestStage).
				Float64("val_rmse", bestRMSE).
				Msg("early stopping")
			break
		}
	}

	if len(valX) > 0 {
		r.Trees = r.Trees[:bestStage]
	}
	return nil
}

// Predict returns the model's estimate for a single feature vector.
func (r *Regressor) Predict(x []float64) float64 {
	out := r.BaseScore
	for _, t := range r.Trees {
		out += r.Params.LearningRate * t.predict(x)
	}
	return out
}

// TrainGlobal fits one cross-SKU model on a feature table. Rows are sorted
// by (SKU, Date) and split by position into a training prefix and a
// validation suffix: a chronological split, deliberately shared across all
// SKUs rather than done per SKU.
func TrainGlobal(rows []domain.FeatureRow, spec domain.FeatureSpec, cfg config.TrainConfig) (*Regressor, error) {
	sorted := make([]domain.FeatureRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SKU != sorted[j].SKU {
			return sorted[i].SKU < sorted[j].SKU
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	split := int(float64(len(sorted)) * cfg.SplitRatio)
	if len(sorted) < 2 || split < 1 || split >= len(sorted) {
		return nil, fmt.Errorf("%w: %d feature rows cannot be split %d/%d for training",
			domain.ErrInsufficientData, len(sorted), split, len(sorted)-split)
	}

	X := make([][]float64, len(sorted))
	y := make([]float64, len(sorted))
	for i, row := range sorted {
		X[i] = spec.Vector(row)
		y[i] = row.Sales
	}

	reg := New(cfg)
	reg.FeatureColumns = spec.Columns()
	if err := reg.Fit(X[:split], y[:split], X[split:], y[split:]); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Int("train_rows", split).
		Int("val_rows", len(sorted)-split).
		Int("trees", len(reg.Trees)).
		Msg("trained global demand model")
	return reg, nil
}

func rootMeanSquaredError(pred, truth []float64) float64 {
	return floats.Distance(pred, truth, 2) / math.Sqrt(float64(len(truth)))
}

func meanAll(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	return floats.Sum(y) / float64(len(y))
}

func constants(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
